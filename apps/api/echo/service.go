package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

type serviceApi struct {
	svc *record.Service
}

func registerServiceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := serviceApi{svc: deps.RecordSvc}

	sg := g.Group("/service")

	// un-authed: feeds the public dashboard autocomplete
	sg.GET("/search-students", api.searchStudents)

	ag := sg.Group("", jwt)
	ag.POST("/log", api.logSchool, roleMiddleware(user.RoleTeacher))
	ag.POST("/batch-log", api.batchLogSchool, roleMiddleware(user.RoleTeacher))
	ag.POST("/log-community", api.logCommunity, roleMiddleware(user.RoleOrganization))
	ag.POST("/batch-log-community", api.batchLogCommunity, roleMiddleware(user.RoleOrganization))
	ag.GET("/student-details/:studentId", api.studentDetails)
}

// Handlers

func (api *serviceApi) logSchool(ctx echo.Context) error {
	return api.log(ctx, "Service hours logged successfully")
}

func (api *serviceApi) logCommunity(ctx echo.Context) error {
	return api.log(ctx, "Community service hours logged successfully!")
}

func (api *serviceApi) log(ctx echo.Context, successMsg string) error {
	var data LogRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LogRequest")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	rec, err := api.svc.Log(ctx.Request().Context(), actor, record.NewRecord{
		StudentName:   data.StudentName,
		Hours:         data.hours(),
		DateCompleted: data.DateCompleted,
		Description:   data.Description,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LogResponse{
		Success:     true,
		Message:     successMsg,
		RecordID:    rec.ID,
		HoursLogged: rec.Hours,
	})
}

func (api *serviceApi) batchLogSchool(ctx echo.Context) error {
	return api.batchLog(ctx)
}

func (api *serviceApi) batchLogCommunity(ctx echo.Context) error {
	return api.batchLog(ctx)
}

func (api *serviceApi) batchLog(ctx echo.Context) error {
	var data record.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.LogBatch(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Successfully logged %d student(s)", res.SuccessCount)
	if res.ErrorCount > 0 {
		msg += fmt.Sprintf(", %d error(s) occurred", res.ErrorCount)
	}
	return ctx.JSON(http.StatusOK, BatchLogResponse{
		Success:     true, // entry failures are reported as data, not as a failed batch
		Message:     msg,
		BatchResult: res,
	})
}

func (api *serviceApi) studentDetails(ctx echo.Context) error {
	detail, err := api.svc.StudentDetail(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		if errors.Cause(err) == record.ErrStudentNotFound {
			return echo.NewHTTPError(http.StatusNotFound,
				"Student not found, please check your spelling of their name.")
		}
		return errors.Wrap(err, "fetching student details")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *serviceApi) searchStudents(ctx echo.Context) error {
	students, err := api.svc.SearchStudents(ctx.Request().Context(), ctx.QueryParam("query"))
	if err != nil {
		return errors.Wrap(err, "searching students")
	}
	return ctx.JSON(http.StatusOK, students)
}

// Request/response shapes

type (
	// LogRequest accepts the hours under either key; the teacher portal sends
	// numberOfHours, the organization portal sends hours.
	LogRequest struct {
		StudentName   string  `json:"studentName"`
		NumberOfHours float64 `json:"numberOfHours"`
		Hours         float64 `json:"hours"`
		DateCompleted string  `json:"dateCompleted"`
		Description   string  `json:"description"`
	}

	LogResponse struct {
		Success     bool    `json:"success"`
		Message     string  `json:"message"`
		RecordID    string  `json:"recordId"`
		HoursLogged float64 `json:"hoursLogged"`
	}

	BatchLogResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		record.BatchResult
	}
)

func (lr LogRequest) hours() float64 {
	if lr.NumberOfHours != 0 {
		return lr.NumberOfHours
	}
	return lr.Hours
}
