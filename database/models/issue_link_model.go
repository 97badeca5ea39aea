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

package models

import "time"

// IssueLink is a discovered association between a ticket and an issue
// tracker item. The whole set is replaced on every sync: tracker state
// (status, sprint) is only current as of the most recent crawl, so no
// incremental merge is attempted.
type IssueLink struct {
	TicketID    int64  `json:"ticketId" gorm:"primaryKey"`
	Repo        string `json:"repo" gorm:"primaryKey"`
	IssueNumber int    `json:"issueNumber" gorm:"primaryKey"`

	IssueTitle string `json:"issueTitle"`
	Status     string `json:"status"`
	Sprint     string `json:"sprint"`
	Milestone  string `json:"milestone"`
	Release    string `json:"release"`

	URL        string    `json:"url"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

func (IssueLink) TableName() string {
	return "issue_links"
}
