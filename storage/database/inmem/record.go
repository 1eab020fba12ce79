package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

type RecordRepository struct {
	db *DB
	// inTx marks a repository handed to an Atomic callback; the mutex is
	// already held so its methods must not lock again.
	inTx bool
}

var _ record.Repository = (*RecordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (repo *RecordRepository) lock() func() {
	if repo.inTx {
		return func() {}
	}
	repo.db.mu.Lock()
	return repo.db.mu.Unlock
}

// Atomic serializes fn against all other repository access. There is no
// rollback; callers only write after their reads succeed.
func (repo *RecordRepository) Atomic(ctx context.Context, fn func(record.Repository) error) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return fn(&RecordRepository{db: repo.db, inTx: true})
}

func (repo *RecordRepository) FindStudentByName(ctx context.Context, fullName string) (user.User, error) {
	defer repo.lock()()

	var matches []user.User
	for _, usr := range repo.db.users {
		if usr.IsStudent() && strings.EqualFold(usr.FullName, fullName) {
			matches = append(matches, usr)
		}
	}
	switch len(matches) {
	case 0:
		return user.User{}, record.ErrStudentNotFound
	case 1:
		return matches[0], nil
	default:
		return user.User{}, record.ErrAmbiguousStudent
	}
}

func (repo *RecordRepository) GetStudentByID(ctx context.Context, id string) (user.User, error) {
	defer repo.lock()()

	usr, ok := repo.db.users[id]
	if !ok || !usr.IsStudent() {
		return user.User{}, record.ErrStudentNotFound
	}
	return usr, nil
}

func (repo *RecordRepository) CreateRecord(ctx context.Context, rec record.Record) error {
	defer repo.lock()()

	repo.db.records = append(repo.db.records, rec)
	return nil
}

func (repo *RecordRepository) AddStudentHours(ctx context.Context, studentID string, delta float64) error {
	defer repo.lock()()

	usr, ok := repo.db.users[studentID]
	if !ok {
		return record.ErrStudentNotFound
	}
	usr.TotalHours += delta
	repo.db.users[studentID] = usr
	return nil
}

func (repo *RecordRepository) QueryStudentRecords(ctx context.Context, studentID string) ([]record.AssignedRecord, error) {
	defer repo.lock()()

	var recs []record.AssignedRecord
	for _, rec := range repo.db.records {
		if rec.StudentID != studentID {
			continue
		}
		recs = append(recs, record.AssignedRecord{
			Record:     rec,
			AssignedBy: repo.assignerName(rec),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].DateCompleted.Equal(recs[j].DateCompleted) {
			return recs[i].DateCompleted.After(recs[j].DateCompleted)
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

func (repo *RecordRepository) assignerName(rec record.Record) string {
	if rec.TeacherID != "" {
		return repo.db.users[rec.TeacherID].FullName
	}
	return repo.db.orgs[rec.OrgID].Name
}

func (repo *RecordRepository) SearchStudents(ctx context.Context, query string) ([]user.User, error) {
	defer repo.lock()()

	query = strings.ToLower(query)
	var students []user.User
	for _, usr := range repo.db.users {
		if usr.IsStudent() && strings.Contains(strings.ToLower(usr.FullName), query) {
			students = append(students, usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].FullName < students[j].FullName })
	return students, nil
}
