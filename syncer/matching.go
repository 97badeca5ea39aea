// Copyright (C) 2025 deskmirror contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package syncer

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/deskmirror/deskmirror/crm"
	"github.com/deskmirror/deskmirror/database/models"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// dashSuffixes are the trailing "- X" decorations operators append to
// segment accounts; they carry no identity.
var dashSuffixes = []string{"corp", "enterprise", "wfn", "llc", "inc"}

var legalSuffixes = []string{
	", inc.", ", inc", ", llc", ", ltd.", ", ltd", ", corp.", ", corp", ", corporation",
	" inc.", " inc", " llc", " ltd.", " ltd", " corp.", " corp", " corporation",
}

// normalizeName folds accents, lowercases, and strips legal and trailing
// dash suffixes. "Nestlé, Inc." and "Nestle" normalize to the same string.
func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(foldAccents(name)))

	if i := strings.LastIndex(n, "-"); i > 0 {
		tail := strings.TrimSpace(n[i+1:])
		if slices.Contains(dashSuffixes, tail) {
			n = strings.TrimSpace(n[:i])
		}
	}

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(n, suffix) {
			n = strings.TrimSpace(strings.TrimSuffix(n, suffix))
			break
		}
	}

	return strings.TrimRight(n, ",. ")
}

// nameMatch reports whether a normalized account name should be associated
// with a normalized organization name: exact equality, the organization name
// starting with the account name (>= 3 chars), or the account name appearing
// inside the organization name at a word boundary (>= 4 chars). Deliberately
// permissive - over-matching is judged less harmful than an organization
// never receiving its CRM display name.
func nameMatch(orgNorm, accountNorm string) bool {
	if orgNorm == "" || accountNorm == "" {
		return false
	}
	if orgNorm == accountNorm {
		return true
	}
	if len(accountNorm) >= 3 && strings.HasPrefix(orgNorm, accountNorm) {
		return true
	}
	if len(accountNorm) >= 4 && containsAtWordBoundary(orgNorm, accountNorm) {
		return true
	}
	return false
}

func containsAtWordBoundary(haystack, needle string) bool {
	for i := 0; ; {
		j := strings.Index(haystack[i:], needle)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(needle)
		if (start == 0 || isWordBoundary(haystack[start-1])) &&
			(end == len(haystack) || isWordBoundary(haystack[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordBoundary(b byte) bool {
	return !(b >= 'a' && b <= 'z' || b >= '0' && b <= '9')
}

type matchKind int

const (
	matchNone matchKind = iota
	matchIdentifier
	matchName
)

// syncAssignments resolves the CRM's (account, owner) tuples against the
// cached organizations for both roles and replaces each role's assignment
// set. Unmatched accounts persist with a nil organization id - that is an
// expected outcome, never an error.
func (s *Syncer) syncAssignments(ctx context.Context, run *runCache) (int, error) {
	orgs, err := run.cachedOrganizations(s.organizations)
	if err != nil {
		return 0, errors.Wrap(err, "could not load cached organizations")
	}

	total := 0
	for _, role := range []models.OwnerRole{models.OwnerRoleCustomerSuccess, models.OwnerRoleProjectManager} {
		n, err := s.syncAssignmentsForRole(ctx, role, orgs)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Syncer) syncAssignmentsForRole(ctx context.Context, role models.OwnerRole, orgs []models.Organization) (int, error) {
	assignments, err := s.crm.ListAssignments(ctx, role)
	if err != nil {
		return 0, errors.Wrapf(err, "could not list %s assignments", role)
	}

	now := s.now()
	var idMatches, nameMatches, unmatched int

	rows := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		resolved, kind := s.resolveAccount(a, orgs)
		switch kind {
		case matchIdentifier:
			idMatches++
		case matchName:
			nameMatches++
		default:
			unmatched++
		}
		rows = append(rows, models.Assignment{
			AccountID:      a.AccountID,
			Role:           role,
			AccountName:    a.AccountName,
			OwnerID:        a.OwnerID,
			OwnerName:      a.OwnerName,
			OwnerEmail:     a.OwnerEmail,
			OrganizationID: resolved,
			SyncedAt:       now,
		})
	}

	if err := s.assignments.ReplaceForRole(role, rows); err != nil {
		return 0, errors.Wrapf(err, "could not replace %s assignments", role)
	}

	slog.Info("assignment phase finished for role", "role", role,
		"count", len(rows), "idMatches", idMatches, "nameMatches", nameMatches, "unmatched", unmatched)
	return len(rows), nil
}

// resolveAccount applies the matching precedence for one assignment: the
// stored CRM identifier wins as primary; the broadened name scan then marks
// every further organization that plausibly belongs to the account and
// supplies the primary only if no identifier match exists.
func (s *Syncer) resolveAccount(a crm.AccountAssignment, orgs []models.Organization) (*int64, matchKind) {
	var primary *int64
	kind := matchNone

	for i := range orgs {
		if orgs[i].CRMID != nil && *orgs[i].CRMID == a.AccountID {
			id := orgs[i].ID
			primary = &id
			kind = matchIdentifier
			s.updateCRMName(orgs[i].ID, a.AccountName)
			break
		}
	}

	accountNorm := normalizeName(a.AccountName)
	if accountNorm == "" {
		return primary, kind
	}

	for i := range orgs {
		if primary != nil && kind == matchIdentifier && orgs[i].ID == *primary {
			continue // already identifier-matched to this exact account
		}
		if !nameMatch(normalizeName(orgs[i].Name), accountNorm) {
			continue
		}
		// several accounts may touch the same organization in one run; the
		// stored display name is last-write-wins in CRM response order
		s.updateCRMName(orgs[i].ID, a.AccountName)
		if primary == nil {
			id := orgs[i].ID
			primary = &id
			kind = matchName
		}
	}

	return primary, kind
}

func (s *Syncer) updateCRMName(orgID int64, crmName string) {
	if err := s.organizations.UpdateCRMName(orgID, crmName); err != nil {
		slog.Warn("could not update organization CRM display name", "orgId", orgID, "err", err)
	}
}
