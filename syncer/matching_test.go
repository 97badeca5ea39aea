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
	"testing"

	"github.com/deskmirror/deskmirror/crm"
	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nestlé, Inc.", "nestle"},
		{"Nestle", "nestle"},
		{"Acme Corporation", "acme"},
		{"Acme, LLC", "acme"},
		{"Globex Ltd", "globex"},
		{"Initech - WFN", "initech"},
		{"Initech - Enterprise", "initech"},
		{"Hooli - Corp", "hooli"},
		{"Café Río, Inc", "cafe rio"},
		{"  Umbrella  ", "umbrella"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeName(tc.in))
		})
	}
}

func TestNameMatch(t *testing.T) {
	t.Run("exact equality", func(t *testing.T) {
		assert.True(t, nameMatch("nestle", "nestle"))
	})

	t.Run("organization name starts with account name", func(t *testing.T) {
		assert.True(t, nameMatch("acme northwest", "acme"))
		// below the 3 char minimum
		assert.False(t, nameMatch("abstract systems", "ab"))
	})

	t.Run("account name inside organization name at word boundary", func(t *testing.T) {
		assert.True(t, nameMatch("the hooli group", "hooli"))
		// embedded in a longer word is not a match
		assert.False(t, nameMatch("schoolies camp", "hooli"))
		// below the 4 char minimum for the contains rule
		assert.False(t, nameMatch("the rio group", "rio"))
	})

	t.Run("empty names never match", func(t *testing.T) {
		assert.False(t, nameMatch("", "acme"))
		assert.False(t, nameMatch("acme", ""))
	})
}

func TestSyncAssignmentsIdentifierMatchWinsOverNameMatch(t *testing.T) {
	env := newTestEnv()
	// org 1 carries the CRM identifier; org 2 would be the stronger name match
	env.orgs.rows[1] = models.Organization{ID: 1, Name: "Acme Subsidiary", CRMID: shared.Ptr("crm-77")}
	env.orgs.rows[2] = models.Organization{ID: 2, Name: "Acme"}
	env.crm.assignments[models.OwnerRoleCustomerSuccess] = []crm.AccountAssignment{
		{AccountID: "crm-77", AccountName: "Acme", OwnerID: "u1", OwnerName: "Dana", OwnerEmail: "dana@example.com"},
	}

	count, err := env.syncer.syncAssignments(context.Background(), newRunCache())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows := env.assignments.rows[models.OwnerRoleCustomerSuccess]
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].OrganizationID)
	assert.EqualValues(t, 1, *rows[0].OrganizationID, "identifier match must be the primary resolution")

	// the name match on org 2 still received the display name
	require.NotNil(t, env.orgs.rows[2].CRMName)
	assert.Equal(t, "Acme", *env.orgs.rows[2].CRMName)
}

func TestSyncAssignmentsNameMatchUpdatesEveryMatchedOrganization(t *testing.T) {
	env := newTestEnv()
	// regional subsidiaries: one CRM account maps onto several organizations
	env.orgs.rows[1] = models.Organization{ID: 1, Name: "Globex Europe"}
	env.orgs.rows[2] = models.Organization{ID: 2, Name: "Globex APAC"}
	env.orgs.rows[3] = models.Organization{ID: 3, Name: "Unrelated"}
	env.crm.assignments[models.OwnerRoleProjectManager] = []crm.AccountAssignment{
		{AccountID: "crm-1", AccountName: "Globex, Inc.", OwnerID: "u2"},
	}

	_, err := env.syncer.syncAssignments(context.Background(), newRunCache())
	require.NoError(t, err)

	require.NotNil(t, env.orgs.rows[1].CRMName)
	require.NotNil(t, env.orgs.rows[2].CRMName)
	assert.Nil(t, env.orgs.rows[3].CRMName)

	rows := env.assignments.rows[models.OwnerRoleProjectManager]
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].OrganizationID)
	// first name match in org id order becomes the primary
	assert.EqualValues(t, 1, *rows[0].OrganizationID)
}

func TestSyncAssignmentsUnmatchedPersistsWithNilOrganization(t *testing.T) {
	env := newTestEnv()
	env.orgs.rows[1] = models.Organization{ID: 1, Name: "Acme"}
	env.crm.assignments[models.OwnerRoleCustomerSuccess] = []crm.AccountAssignment{
		{AccountID: "crm-9", AccountName: "Zzyzx Holdings", OwnerID: "u3"},
	}

	_, err := env.syncer.syncAssignments(context.Background(), newRunCache())
	require.NoError(t, err, "an unmatched account is a valid outcome, not an error")

	rows := env.assignments.rows[models.OwnerRoleCustomerSuccess]
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].OrganizationID)
	assert.Equal(t, "Zzyzx Holdings", rows[0].AccountName)
}

func TestSyncAssignmentsReplacesStaleRows(t *testing.T) {
	env := newTestEnv()
	env.orgs.rows[1] = models.Organization{ID: 1, Name: "Acme"}
	env.assignments.rows[models.OwnerRoleCustomerSuccess] = []models.Assignment{
		{AccountID: "gone", Role: models.OwnerRoleCustomerSuccess, AccountName: "Renamed Away"},
	}
	env.crm.assignments[models.OwnerRoleCustomerSuccess] = []crm.AccountAssignment{
		{AccountID: "crm-1", AccountName: "Acme", OwnerID: "u1"},
	}

	_, err := env.syncer.syncAssignments(context.Background(), newRunCache())
	require.NoError(t, err)

	rows := env.assignments.rows[models.OwnerRoleCustomerSuccess]
	require.Len(t, rows, 1)
	assert.Equal(t, "crm-1", rows[0].AccountID)
}
