// Package domain models campus safety alert postings and the incidents they
// describe.
//
// # Data Source
//
// Alerts originate as short free-text postings on the campus emergency blog.
// A posting is either the first report of an incident ("Original") or a
// follow-up to one ("Update"). Postings are grouped on the page under date
// headings, and a single date heading may carry an original post plus
// several updates for the same incident.
//
// # Text Conventions
//
// Date headings:
//
//	"<Month> <day>, <year>"  →  e.g. "March 9, 2023"
//	Full month name, case-insensitive. Every alert chunk starts with the
//	date heading that owns it.
//
// Posting markers:
//
//	"UPDATE at 8:47pm: ..." / "Updated 9:15 a.m." / "[UPDATE]: ..."
//	"Original post:" / "[ORIGINAL POST]"
//	Either marker starts a new posting within a date block. A date block
//	with no marker at all is a single Original posting.
//
// # Identity
//
// Every posting gets a unique, monotonically increasing alert ID. All
// postings describing the same real-world event share an incident ID: an
// Update continues the incident of the most recent posting, an Original
// opens a new incident. See [AssignIdentity].
//
// # Urgency
//
// An incident is urgent when at least one of its postings falls inside a
// trailing time window ending now. Postings without a report time can only
// qualify by being dated today — a deliberately coarser fallback, since they
// cannot be placed on the hour. See [UrgentIncidents].
package domain
