package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/lchelle/servicediary/apps/api/echo"
	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/feedback"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
	emailsvc "github.com/lchelle/servicediary/services/email"
	"github.com/lchelle/servicediary/storage/database/inmem"
)

var errMissingToken = httpErr{Message: "No auth token"}

type testEnv struct {
	app     *Server
	usrRepo user.Repository
	orgRepo org.Repository
	recSvc  *record.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := inmem.NewDB()
	usrRepo := inmem.NewUserRepository(db)
	orgRepo := inmem.NewOrgRepository(db)
	recRepo := inmem.NewRecordRepository(db)
	fbRepo := inmem.NewFeedbackRepository(db)

	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrSvc := user.NewService(usrRepo)
	orgSvc := org.NewService(orgRepo, conf, logger)
	recSvc := record.NewService(recRepo, orgSvc, logger)
	fbSvc := feedback.NewService(fbRepo, mailSvc, conf, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app := NewServer(
		ServerDeps{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			OrgSvc:      orgSvc,
			RecordSvc:   recSvc,
			FeedbackSvc: fbSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	return &testEnv{
		app:     app,
		usrRepo: usrRepo,
		orgRepo: orgRepo,
		recSvc:  recSvc,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// Fixtures

func createStudent(t *testing.T, repo user.Repository, name, email, studentID string, grade int) user.User {
	t.Helper()
	usr := user.User{
		Email:     email,
		FullName:  name,
		Role:      user.RoleStudent,
		StudentID: studentID,
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword("s3kr3t!pwd"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createTeacher(t *testing.T, repo user.Repository, name, email string) user.User {
	t.Helper()
	usr := user.User{
		Email:     email,
		FullName:  name,
		Role:      user.RoleTeacher,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword("s3kr3t!pwd"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createOrg(t *testing.T, repo org.Repository, name, key, contact string) org.Organization {
	t.Helper()
	o, err := repo.CreateOrg(context.Background(), org.Organization{
		Name:          name,
		Key:           strings.ToUpper(key),
		ContactPerson: contact,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateOrg(): %v", err)
	}
	return o
}

// HTTP helpers

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getUserToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getUserToken(): %v", err)
	}
	return token
}

func getOrgToken(t *testing.T, o org.Organization) string {
	t.Helper()
	token, err := GenerateToken(conf, GetOrgClaims(conf, o))
	if err != nil {
		t.Fatalf("getOrgToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarshallMap(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshallMap(): %v; data %s", err, data)
	}
	return m
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
