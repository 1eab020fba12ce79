package record

import (
	"time"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/user"
)

// Type says whether hours were served at school (teacher-attributed) or in
// the community (organization-attributed).
type Type string

const (
	TypeSchool    Type = "school"
	TypeCommunity Type = "community"
)

func (t Type) String() string { return string(t) }

// Record is one logged instance of service hours. Records are immutable once
// created; exactly one of TeacherID or OrgID is set (mutually exclusive
// attribution).
type Record struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"-"`
	Hours         float64   `json:"hours"`
	Type          Type      `json:"serviceType"`
	Description   string    `json:"description"`
	DateCompleted time.Time `json:"dateCompleted"`
	TeacherID     string    `json:"-"`
	OrgID         string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// AssignedRecord is a Record joined to the name of the teacher or
// organization that logged it.
type AssignedRecord struct {
	Record
	AssignedBy string `json:"assignedBy"`
}

// Actor is the authenticated principal logging hours: a teacher or an
// organization.
type Actor struct {
	ID   string
	Role user.Role
}

// NewRecord is a candidate single-record submission.
type NewRecord struct {
	StudentName   string
	Hours         float64
	DateCompleted string
	Description   string
}

type (
	// BatchEntry is one student tuple within a batch submission.
	BatchEntry struct {
		FirstName string  `json:"firstName"`
		Surname   string  `json:"surname"`
		Hours     float64 `json:"hours"`
	}

	// NewBatch logs records for many students under one shared date and
	// description.
	NewBatch struct {
		Students      []BatchEntry `json:"students"`
		DateCompleted string       `json:"dateCompleted"`
		Description   string       `json:"description"`
	}

	BatchEntryResult struct {
		StudentName string  `json:"studentName"`
		Hours       float64 `json:"hours"`
		RecordID    string  `json:"recordId"`
		Success     bool    `json:"success"`
	}

	// BatchResult summarizes a processed batch. Entry failures are reported
	// as data; they never fail the batch itself.
	BatchResult struct {
		Results       []BatchEntryResult `json:"results"`
		TotalStudents int                `json:"totalStudents"`
		SuccessCount  int                `json:"successCount"`
		ErrorCount    int                `json:"errorCount"`
		Errors        []string           `json:"errors,omitempty"`
	}
)

func (e BatchEntry) fullName() string {
	return core.CleanString(e.FirstName) + " " + core.CleanString(e.Surname)
}

// StudentSummary is the search-result shape.
type StudentSummary struct {
	ID         string  `json:"id"`
	FullName   string  `json:"fullName"`
	Grade      int     `json:"grade"`
	TotalHours float64 `json:"totalHours"`
}

// StudentDetail adds per-type sums recomputed from the returned records.
type StudentDetail struct {
	StudentSummary
	SchoolHours    float64 `json:"schoolHours"`
	CommunityHours float64 `json:"communityHours"`
}

// Detail is the student-details response: base info plus all records, newest
// completion date first.
type Detail struct {
	Student        StudentDetail    `json:"student"`
	ServiceRecords []AssignedRecord `json:"serviceRecords"`
}
