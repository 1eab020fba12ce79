package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

func Test_serviceApi_log(t *testing.T) {
	env := setup(t)

	teacher := createTeacher(t, env.usrRepo, "Jane Brown", "jane@school.cd")
	student := createStudent(t, env.usrRepo, "James Smith", "james@school.cd", "STU-001", 10)
	createStudent(t, env.usrRepo, "Jane Doe", "jdoe1@school.cd", "STU-002", 9)
	createStudent(t, env.usrRepo, "jane doe", "jdoe2@school.cd", "STU-003", 11)

	teacherToken := getUserToken(t, teacher)
	studentToken := getUserToken(t, student)

	logBody := func(name string, hours float64, date, desc string) []byte {
		return marchallObj(t, map[string]interface{}{
			"studentName":   name,
			"numberOfHours": hours,
			"dateCompleted": date,
			"description":   desc,
		})
	}
	valErr := func(msg string) []byte {
		return marchallObj(t, map[string]interface{}{"success": false, "message": msg})
	}
	futureDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/service/log",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher role required", method: http.MethodPost, path: "/api/service/log", token: studentToken,
			body:     logBody("James Smith", 2, "2025-01-15", "Library assistance"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "Access denied. Insufficient permissions."}),
		},
		{
			name: "empty body", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: valErr("All fields are required, Hours must be between 0.5 and 10, Description must be at least 8 characters long"),
		},
		{
			name: "future date", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("James Smith", 2, futureDate, "Library assistance"),
			wantCode: http.StatusBadRequest,
			wantData: valErr("Service date cannot be in the future"),
		},
		{
			name: "not a half hour increment", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("James Smith", 1.3, "2025-01-15", "Library assistance"),
			wantCode: http.StatusBadRequest,
			wantData: valErr("Hours must be in half hour increments (0.5)"),
		},
		{
			name: "over the cap", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("James Smith", 10.5, "2025-01-15", "Library assistance"),
			wantCode: http.StatusBadRequest,
			wantData: valErr("Hours must be between 0.5 and 10"),
		},
		{
			name: "short description", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("James Smith", 2, "2025-01-15", "short"),
			wantCode: http.StatusBadRequest,
			wantData: valErr("Description must be at least 8 characters long"),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("No Body", 2, "2025-01-15", "Library assistance"),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "Student not found"}),
		},
		{
			name: "ambiguous student name", method: http.MethodPost, path: "/api/service/log", token: teacherToken,
			body:     logBody("Jane Doe", 2, "2025-01-15", "Library assistance"),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Message: "Multiple students share this name, please use the student's id instead"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("log ok", func(t *testing.T) {
		body := logBody("james smith", 2.5, "2025-01-15", "Library assistance")
		req, rec := newAuthRequest(http.MethodPost, "/api/service/log", teacherToken, body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "Service hours logged successfully", res["message"])
		assert.NotEmpty(t, res["recordId"])
		assert.Equal(t, 2.5, res["hoursLogged"])

		usr, err := env.usrRepo.GetUserByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Equal(t, 2.5, usr.TotalHours)

		// a duplicate submission is not deduplicated; it counts twice
		req, rec = newAuthRequest(http.MethodPost, "/api/service/log", teacherToken, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		usr, err = env.usrRepo.GetUserByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Equal(t, 5.0, usr.TotalHours)
	})
}

func Test_serviceApi_logCommunity(t *testing.T) {
	env := setup(t)

	student := createStudent(t, env.usrRepo, "James Smith", "james@school.cd", "STU-001", 10)
	extOrg := createOrg(t, env.orgRepo, "Helping Hands", "HEO77", "Thandi M.")
	stdOrg := createOrg(t, env.orgRepo, "Soup Kitchen", "SK001", "Peter K.")

	logBody := func(hours float64) []byte {
		// the organization portal sends "hours", not "numberOfHours"
		return marchallObj(t, map[string]interface{}{
			"studentName":   "James Smith",
			"hours":         hours,
			"dateCompleted": "2025-01-15",
			"description":   "Weekend food drive",
		})
	}

	t.Run("default cap applies", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/service/log-community", getOrgToken(t, stdOrg), logBody(10.5))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "Hours must be between 0.5 and 10", res["message"])
	})

	t.Run("extended cap for the configured key", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/service/log-community", getOrgToken(t, extOrg), logBody(50))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "Community service hours logged successfully!", res["message"])
		assert.Equal(t, 50.0, res["hoursLogged"])

		usr, err := env.usrRepo.GetUserByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Equal(t, 50.0, usr.TotalHours)
	})

	t.Run("teacher cannot log community hours", func(t *testing.T) {
		teacher := createTeacher(t, env.usrRepo, "Jane Brown", "jane@school.cd")
		req, rec := newAuthRequest(http.MethodPost, "/api/service/log-community", getUserToken(t, teacher), logBody(2))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})
}

func Test_serviceApi_batchLog(t *testing.T) {
	env := setup(t)

	teacher := createTeacher(t, env.usrRepo, "Jane Brown", "jane@school.cd")
	smith := createStudent(t, env.usrRepo, "James Smith", "james@school.cd", "STU-001", 10)
	jones := createStudent(t, env.usrRepo, "Amy Jones", "amy@school.cd", "STU-002", 9)

	teacherToken := getUserToken(t, teacher)

	batchBody := func(desc string, students ...map[string]interface{}) []byte {
		return marchallObj(t, map[string]interface{}{
			"students":      students,
			"dateCompleted": "2025-01-15",
			"description":   desc,
		})
	}

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/service/batch-log",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "no students", method: http.MethodPost, path: "/api/service/batch-log", token: teacherToken,
			body:     batchBody("Sports day marshalling"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"message":"Missing required fields"}`),
		},
		{
			name: "shared description too short", method: http.MethodPost, path: "/api/service/batch-log", token: teacherToken,
			body:     batchBody("short", map[string]interface{}{"firstName": "James", "surname": "Smith", "hours": 2}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"message":"Description must be between 8 and 200 characters"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("partial success commits", func(t *testing.T) {
		body := batchBody("Sports day marshalling",
			map[string]interface{}{"firstName": "James", "surname": "Smith", "hours": 2},
			map[string]interface{}{"firstName": "Amy", "surname": "Jones", "hours": 15},
			map[string]interface{}{"firstName": "No", "surname": "Body", "hours": 2},
		)
		req, rec := newAuthRequest(http.MethodPost, "/api/service/batch-log", teacherToken, body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "Successfully logged 1 student(s), 2 error(s) occurred", res["message"])
		assert.Equal(t, float64(3), res["totalStudents"])
		assert.Equal(t, float64(1), res["successCount"])
		assert.Equal(t, float64(2), res["errorCount"])

		results, ok := res["results"].([]interface{})
		require.True(t, ok)
		require.Len(t, results, 1)
		entry := results[0].(map[string]interface{})
		assert.Equal(t, "James Smith", entry["studentName"])
		assert.Equal(t, 2.0, entry["hours"])
		assert.Equal(t, true, entry["success"])
		assert.NotEmpty(t, entry["recordId"])

		errs, ok := res["errors"].([]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{
			"Student 2: Hours must be between 0.5 and 10",
			"Student 3: No Body not found in database",
		}, errs)

		// only the successful entry touched the totals
		usr, err := env.usrRepo.GetUserByID(context.Background(), smith.ID)
		require.NoError(t, err)
		assert.Equal(t, 2.0, usr.TotalHours)
		usr, err = env.usrRepo.GetUserByID(context.Background(), jones.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, usr.TotalHours)
	})

	t.Run("all entries fail still 200", func(t *testing.T) {
		body := batchBody("Sports day marshalling",
			map[string]interface{}{"firstName": "X", "surname": "Smith", "hours": 2},
		)
		req, rec := newAuthRequest(http.MethodPost, "/api/service/batch-log", teacherToken, body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "Successfully logged 0 student(s), 1 error(s) occurred", res["message"])
		assert.Equal(t, float64(0), res["successCount"])
		assert.Equal(t, []interface{}{"Student 1: First name must be longer than 1 character"}, res["errors"])
	})
}

func Test_serviceApi_studentDetails(t *testing.T) {
	env := setup(t)

	teacher := createTeacher(t, env.usrRepo, "Jane Brown", "jane@school.cd")
	student := createStudent(t, env.usrRepo, "James Smith", "james@school.cd", "STU-001", 10)
	o := createOrg(t, env.orgRepo, "Soup Kitchen", "SK001", "Peter K.")

	ctx := context.Background()
	_, err := env.recSvc.Log(ctx, record.Actor{ID: teacher.ID, Role: user.RoleTeacher}, record.NewRecord{
		StudentName: "James Smith", Hours: 2, DateCompleted: "2025-01-10", Description: "Library assistance",
	})
	require.NoError(t, err)
	_, err = env.recSvc.Log(ctx, record.Actor{ID: o.ID, Role: user.RoleOrganization}, record.NewRecord{
		StudentName: "James Smith", Hours: 1.5, DateCompleted: "2025-01-20", Description: "Weekend food drive",
	})
	require.NoError(t, err)

	token := getUserToken(t, student)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/service/student-details/"+student.ID)
		env.app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/service/student-details/lol", token)
		env.app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "Student not found, please check your spelling of their name."}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("details ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/service/student-details/"+student.ID, token)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := unmarshallMap(t, rec.Body.Bytes())

		stu, ok := res["student"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, student.ID, stu["id"])
		assert.Equal(t, "James Smith", stu["fullName"])
		assert.Equal(t, float64(10), stu["grade"])
		assert.Equal(t, 3.5, stu["totalHours"])
		assert.Equal(t, 2.0, stu["schoolHours"])
		assert.Equal(t, 1.5, stu["communityHours"])

		recs, ok := res["serviceRecords"].([]interface{})
		require.True(t, ok)
		require.Len(t, recs, 2)

		// newest completion date first, each with its attribution
		first := recs[0].(map[string]interface{})
		assert.Equal(t, "community", first["serviceType"])
		assert.Equal(t, "Soup Kitchen", first["assignedBy"])
		second := recs[1].(map[string]interface{})
		assert.Equal(t, "school", second["serviceType"])
		assert.Equal(t, "Jane Brown", second["assignedBy"])
	})
}

func Test_serviceApi_searchStudents(t *testing.T) {
	env := setup(t)

	smith := createStudent(t, env.usrRepo, "James Smith", "james@school.cd", "STU-001", 10)
	createStudent(t, env.usrRepo, "Jane Doe", "jdoe@school.cd", "STU-002", 9)
	createTeacher(t, env.usrRepo, "Tom Smith", "tom@school.cd") // teachers never match

	t.Run("substring match", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/service/search-students?query=mit")
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []map[string]interface{}{
				{"id": smith.ID, "fullName": "James Smith", "grade": 10, "totalHours": 0},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("no match", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/service/search-students?query=zzz")
		env.app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}
		checkCodeAndData(t, tt, rec)
	})
}
