package tests

import (
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/kasongo/elimu/apps/api/echo"
	"github.com/kasongo/elimu/core"
	"github.com/kasongo/elimu/core/course"
	"github.com/kasongo/elimu/core/notification"
	"github.com/kasongo/elimu/core/schedule"
	"github.com/kasongo/elimu/core/user"
	emailsvc "github.com/kasongo/elimu/services/email"
	inmemdb "github.com/kasongo/elimu/storage/database/inmem"
	testutil "github.com/kasongo/elimu/tests"
)

var (
	conf *core.Config
	app  Server

	usrRepo   user.Repository
	crsRepo   course.Repository
	classRepo schedule.ClassRepository
	notifSvc  *notification.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = testutil.NewTestConfig()
	resetApp()
	os.Exit(m.Run())
}

// resetApp rebuilds the whole stack on a fresh in-memory DB.
func resetApp() {
	db, err := inmemdb.Open()
	if err != nil {
		panic(err)
	}

	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	classRepo = inmemdb.NewClassRepository(db)
	notifSvc = notification.NewService(
		inmemdb.NewNotificationRepository(db),
		usrRepo,
		emailsvc.NewConsoleServiceMock(conf),
	)

	usrSvc := user.NewService(usrRepo)
	schedSvc := schedule.NewService(
		inmemdb.NewRequestRepository(db),
		classRepo,
		usrRepo,
		course.NewService(crsRepo),
		notifSvc,
		testutil.NewNopLogger(),
	)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app = NewServer(
		ServerDeps{
			Conf:            conf,
			Logger:          testutil.NewNopLogger(),
			UserSvc:         usrSvc,
			ScheduleSvc:     schedSvc,
			NotificationSvc: notifSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)
}

func resetDB(t *testing.T) {
	t.Helper()
	resetApp()
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
