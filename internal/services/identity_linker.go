package services

import (
	"context"
	"sort"
	"strings"

	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
)

// IdentityLink proposes email as the stable identity of an employee.
type IdentityLink struct {
	Email        string `json:"email"`
	EmployeeID   uint64 `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Distance     int    `json:"distance"`
}

// IdentityLinker backfills employees.email from directory addresses of the form
// first.last@domain by fuzzy matching the local part against employee names.
type IdentityLinker struct {
	employees repositories.EmployeeRepositoryInterface
	logger    *zap.Logger
}

func NewIdentityLinker(employees repositories.EmployeeRepositoryInterface, logger *zap.Logger) *IdentityLinker {
	return &IdentityLinker{employees: employees, logger: logger}
}

// CandidateName turns "max.mustermann@company.com" into "max mustermann".
func CandidateName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return strings.Join(strings.Fields(strings.ToLower(local)), " ")
}

// MatchIdentities pairs emails with employees. A match needs a best rank within
// maxDistance that no other employee ties; every employee is claimed at most once.
// Emails without an acceptable match are returned as unmatched.
func MatchIdentities(emails []string, employees []entities.Employee, maxDistance int) ([]IdentityLink, []string) {
	// Rank distances are computed on the raw strings, so both sides are lowercased.
	names := make([]string, len(employees))
	for i, e := range employees {
		names[i] = strings.ToLower(e.FullName())
	}

	claimed := make(map[uint64]bool)
	var (
		links     []IdentityLink
		unmatched []string
	)
	for _, email := range emails {
		candidate := CandidateName(email)
		if candidate == "" {
			unmatched = append(unmatched, email)
			continue
		}

		ranks := fuzzy.RankFindNormalizedFold(candidate, names)
		sort.Sort(ranks)
		if len(ranks) == 0 || ranks[0].Distance > maxDistance ||
			(len(ranks) > 1 && ranks[1].Distance == ranks[0].Distance) {
			unmatched = append(unmatched, email)
			continue
		}

		best := employees[ranks[0].OriginalIndex]
		if claimed[best.ID] {
			unmatched = append(unmatched, email)
			continue
		}
		claimed[best.ID] = true
		links = append(links, IdentityLink{
			Email:        strings.ToLower(strings.TrimSpace(email)),
			EmployeeID:   best.ID,
			EmployeeName: best.FullName(),
			Distance:     ranks[0].Distance,
		})
	}
	return links, unmatched
}

// Propose matches emails against employees that have no email yet.
func (l *IdentityLinker) Propose(ctx context.Context, emails []string, maxDistance int) ([]IdentityLink, []string, error) {
	employees, err := l.employees.ListWithoutEmail(ctx)
	if err != nil {
		return nil, nil, err
	}
	links, unmatched := MatchIdentities(emails, employees, maxDistance)
	l.logger.Info("identity matching finished",
		zap.Int("emails", len(emails)),
		zap.Int("matched", len(links)),
		zap.Int("unmatched", len(unmatched)),
	)
	return links, unmatched, nil
}

// Apply stores the proposed links and returns how many were written.
func (l *IdentityLinker) Apply(ctx context.Context, links []IdentityLink) (int, error) {
	applied := 0
	for _, link := range links {
		if err := l.employees.SetEmail(ctx, link.EmployeeID, link.Email); err != nil {
			return applied, err
		}
		l.logger.Info("employee identity linked", zap.Uint64("employee_id", link.EmployeeID), zap.String("email", link.Email))
		applied++
	}
	return applied, nil
}
