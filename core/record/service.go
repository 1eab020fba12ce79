package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/user"
)

var (
	// errors
	ErrStudentNotFound = errors.New("Student not found")
	// ErrAmbiguousStudent rejects writes when several students share the
	// submitted full name; guessing silently is worse than failing.
	ErrAmbiguousStudent = errors.New("multiple students share this name")
)

type (
	Repository interface {
		// Atomic runs fn against a transaction-bound copy of the repository;
		// fn's writes commit together or not at all.
		Atomic(ctx context.Context, fn func(Repository) error) error

		// FindStudentByName does a case-insensitive exact match on full name.
		// Returns ErrStudentNotFound on zero matches and ErrAmbiguousStudent
		// on more than one.
		FindStudentByName(ctx context.Context, fullName string) (user.User, error)
		GetStudentByID(ctx context.Context, id string) (user.User, error)
		CreateRecord(ctx context.Context, rec Record) error
		// AddStudentHours must increment as a single atomic statement
		// (total_hours = total_hours + delta), never read-modify-write.
		AddStudentHours(ctx context.Context, studentID string, delta float64) error
		QueryStudentRecords(ctx context.Context, studentID string) ([]AssignedRecord, error)
		SearchStudents(ctx context.Context, query string) ([]user.User, error)
	}

	Service struct {
		repo   Repository
		orgs   *org.Service
		logger core.Logger
	}
)

func NewService(repo Repository, orgs *org.Service, logger core.Logger) *Service {
	return &Service{repo: repo, orgs: orgs, logger: logger}
}

// maxHours resolves the acting principal's per-record hour cap. Teachers
// always use the default; organizations get their own limit.
func (svc *Service) maxHours(ctx context.Context, actor Actor) float64 {
	if actor.Role == user.RoleOrganization {
		return svc.orgs.HourLimit(ctx, actor.ID)
	}
	return org.DefaultMaxHours
}

func (svc *Service) newRecord(actor Actor, studentID string, hours float64, date time.Time, description string) Record {
	rec := Record{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		Hours:         hours,
		Description:   description,
		DateCompleted: date,
		CreatedAt:     time.Now().UTC(),
	}
	if actor.Role == user.RoleOrganization {
		rec.Type = TypeCommunity
		rec.OrgID = actor.ID
	} else {
		rec.Type = TypeSchool
		rec.TeacherID = actor.ID
	}
	return rec
}

// Log persists one record and bumps the student's running total, both inside
// one transaction. On success exactly one record exists and total_hours has
// increased by exactly nr.Hours; on validation failure nothing is written.
func (svc *Service) Log(ctx context.Context, actor Actor, nr NewRecord) (Record, error) {
	nr.StudentName = core.CleanString(nr.StudentName)

	date, verrs := ValidateServiceHours(nr.Hours, nr.DateCompleted, nr.StudentName, nr.Description, svc.maxHours(ctx, actor))
	if len(verrs) > 0 {
		return Record{}, core.NewValidationError(errors.New(strings.Join(verrs, ", ")))
	}

	var rec Record
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		student, err := repo.FindStudentByName(ctx, nr.StudentName)
		if err != nil {
			return err
		}
		rec = svc.newRecord(actor, student.ID, nr.Hours, date, nr.Description)
		if err := repo.CreateRecord(ctx, rec); err != nil {
			return errors.Wrap(err, "inserting service record")
		}
		return errors.Wrap(repo.AddStudentHours(ctx, student.ID, rec.Hours), "updating total hours")
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// LogBatch processes every student tuple inside one transaction. A tuple that
// fails validation or name resolution is reported in the result and skipped;
// the transaction commits regardless once the loop finishes, preserving the
// valid entries of a problematic batch — even with zero successes.
func (svc *Service) LogBatch(ctx context.Context, actor Actor, nb NewBatch) (BatchResult, error) {
	date, err := nb.Validate()
	if err != nil {
		return BatchResult{}, err
	}
	maxHours := svc.maxHours(ctx, actor)

	res := BatchResult{
		Results:       make([]BatchEntryResult, 0, len(nb.Students)),
		TotalStudents: len(nb.Students),
	}

	err = svc.repo.Atomic(ctx, func(repo Repository) error {
		for i, entry := range nb.Students {
			if reason := entry.validate(maxHours); reason != "" {
				res.Errors = append(res.Errors, fmt.Sprintf("Student %d: %s", i+1, reason))
				continue
			}

			fullName := entry.fullName()
			student, err := repo.FindStudentByName(ctx, fullName)
			if err != nil {
				switch errors.Cause(err) {
				case ErrStudentNotFound:
					res.Errors = append(res.Errors, fmt.Sprintf("Student %d: %s not found in database", i+1, fullName))
				case ErrAmbiguousStudent:
					res.Errors = append(res.Errors, fmt.Sprintf("Student %d: multiple students named %s", i+1, fullName))
				default:
					return errors.Wrap(err, "finding student")
				}
				continue
			}

			rec := svc.newRecord(actor, student.ID, entry.Hours, date, nb.Description)
			if err := repo.CreateRecord(ctx, rec); err != nil {
				return errors.Wrap(err, "inserting service record")
			}
			if err := repo.AddStudentHours(ctx, student.ID, rec.Hours); err != nil {
				return errors.Wrap(err, "updating total hours")
			}

			res.Results = append(res.Results, BatchEntryResult{
				StudentName: fullName,
				Hours:       rec.Hours,
				RecordID:    rec.ID,
				Success:     true,
			})
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	res.SuccessCount = len(res.Results)
	res.ErrorCount = len(res.Errors)
	return res, nil
}

// StudentDetail returns the student's base info plus all records with their
// attribution, and per-type hour sums recomputed from the returned records.
func (svc *Service) StudentDetail(ctx context.Context, studentID string) (Detail, error) {
	student, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Detail{}, err
	}

	recs, err := svc.repo.QueryStudentRecords(ctx, studentID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying service records")
	}
	if recs == nil {
		recs = []AssignedRecord{}
	}

	detail := Detail{
		Student: StudentDetail{
			StudentSummary: summarize(student),
		},
		ServiceRecords: recs,
	}
	for _, rec := range recs {
		switch rec.Type {
		case TypeSchool:
			detail.Student.SchoolHours += rec.Hours
		case TypeCommunity:
			detail.Student.CommunityHours += rec.Hours
		}
	}
	return detail, nil
}

// SearchStudents does a case-insensitive substring match on full name.
func (svc *Service) SearchStudents(ctx context.Context, query string) ([]StudentSummary, error) {
	students, err := svc.repo.SearchStudents(ctx, core.CleanString(query))
	if err != nil {
		return nil, errors.Wrap(err, "searching students")
	}
	summaries := make([]StudentSummary, 0, len(students))
	for _, s := range students {
		summaries = append(summaries, summarize(s))
	}
	return summaries, nil
}

func summarize(usr user.User) StudentSummary {
	return StudentSummary{
		ID:         usr.ID,
		FullName:   usr.FullName,
		Grade:      usr.Grade,
		TotalHours: usr.TotalHours,
	}
}
