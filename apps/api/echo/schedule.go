package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kasongo/elimu/core"
	"github.com/kasongo/elimu/core/course"
	"github.com/kasongo/elimu/core/schedule"
	"github.com/kasongo/elimu/core/user"
)

type scheduleApi struct {
	svc      *schedule.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, usrSvc *user.Service, validate *validator.Validate) {
	api := scheduleApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	ag := g.Group("", jwt)

	ag.POST("/courses/:courseId/class-requests", api.sendRequest, studentMiddleware())
	ag.POST("/class-requests/:requestId/decision", api.decideRequest, tutorMiddleware())
	ag.GET("/class-requests", api.tutorRequests, tutorMiddleware())
	ag.GET("/class-requests/mine", api.studentRequests, studentMiddleware())
	ag.GET("/classes/accepted", api.acceptedClasses)

	ag.POST("/courses/:courseId/group-classes", api.createGroupClass, tutorMiddleware())
	ag.GET("/courses/:courseId/group-classes", api.courseGroupClasses)
	ag.GET("/group-classes", api.tutorGroupClasses, tutorMiddleware())
	ag.GET("/group-classes/mine", api.studentGroupClasses, studentMiddleware())
}

// scheduleError maps domain errors to their HTTP renditions; anything
// unrecognized bubbles up to the error handler as a 500.
func scheduleError(err error) error {
	switch cause := errors.Cause(err); cause {
	case nil:
		return nil
	case course.ErrNotFound, schedule.ErrRequestNotFound, schedule.ErrClassNotFound:
		return echo.NewHTTPError(http.StatusNotFound, cause.Error())
	case course.ErrNotEnrolled, schedule.ErrNotCourseTutor:
		return echo.NewHTTPError(http.StatusForbidden, cause.Error())
	case schedule.ErrInvalidTime, schedule.ErrPastTime, schedule.ErrIncompleteReference:
		return core.NewValidationError(cause)
	case schedule.ErrDuplicateRequest, schedule.ErrOverlappingClass, schedule.ErrRequestResolved:
		return echo.NewHTTPError(http.StatusBadRequest, cause.Error())
	case schedule.ErrClassCreation:
		return echo.NewHTTPError(http.StatusInternalServerError, cause.Error())
	default:
		return err
	}
}

// Handlers

func (api *scheduleApi) sendRequest(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data schedule.NewClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.SendRequest(ctx.Request().Context(), ctx.Param("courseId"), claims.Subject, data)
	if err != nil {
		return scheduleError(err)
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *scheduleApi) decideRequest(ctx echo.Context) error {
	var data schedule.RequestDecision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestDecision")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.HandleRequest(ctx.Request().Context(), ctx.Param("requestId"), data)
	if err != nil {
		return scheduleError(err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *scheduleApi) tutorRequests(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqs, err := api.svc.PendingRequestsForTutor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return scheduleError(err)
	}
	if reqs == nil {
		reqs = []schedule.ClassRequest{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *scheduleApi) studentRequests(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqs, err := api.svc.PendingRequestsForStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return scheduleError(err)
	}
	if reqs == nil {
		reqs = []schedule.ClassRequest{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *scheduleApi) acceptedClasses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	classes, err := api.svc.AcceptedClassesFor(ctx.Request().Context(), usr)
	if err != nil {
		return scheduleError(err)
	}
	if classes == nil {
		classes = []schedule.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *scheduleApi) createGroupClass(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data schedule.NewGroupClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroupClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.CreateGroupClass(ctx.Request().Context(), ctx.Param("courseId"), claims.Subject, data)
	if err != nil {
		return scheduleError(err)
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *scheduleApi) courseGroupClasses(ctx echo.Context) error {
	classes, err := api.svc.UpcomingGroupClassesForCourse(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return scheduleError(err)
	}
	if classes == nil {
		classes = []schedule.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *scheduleApi) tutorGroupClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	classes, err := api.svc.UpcomingGroupClassesForTutor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return scheduleError(err)
	}
	if classes == nil {
		classes = []schedule.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *scheduleApi) studentGroupClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	classes, err := api.svc.UpcomingGroupClassesForStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return scheduleError(err)
	}
	if classes == nil {
		classes = []schedule.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}
