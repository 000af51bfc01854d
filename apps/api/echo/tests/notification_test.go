package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/kasongo/elimu/core/notification"
	"github.com/kasongo/elimu/core/user"
	testutil "github.com/kasongo/elimu/tests"
)

func Test_notificationApi_list(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Baraka", "baraka@test.cd", "", user.RoleStudent)

	n, err := notifSvc.Notify(context.Background(), notification.NewNotification{
		User:    usr.ID,
		Type:    notification.TypeClassRequestHandled,
		Message: "Your class request for Mathematics has been accepted.",
	})
	if err != nil {
		t.Fatalf("Notify(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Own notifications", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallList(t, n)},
		{name: "Others see nothing", token: getToken(t, other), wantCode: http.StatusOK, wantData: marchallList(t)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/notifications"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_notificationApi_markRead(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Baraka", "baraka@test.cd", "", user.RoleStudent)

	n, err := notifSvc.Notify(context.Background(), notification.NewNotification{
		User:    usr.ID,
		Type:    notification.TypeClassRequestSent,
		Message: "You have received a class request.",
	})
	if err != nil {
		t.Fatalf("Notify(): %v", err)
	}

	path := fmt.Sprintf("/v1/notifications/%s/read", n.ID)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Only the recipient", path: path, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Unknown notification", path: "/v1/notifications/nope/read", token: getToken(t, usr),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Marked read", path: path, token: getToken(t, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "Marked read" {
				var read notification.Notification
				if err := json.Unmarshal(rec.Body.Bytes(), &read); err != nil {
					t.Fatalf("unmarshalling notification: %v", err)
				}
				if read.Status != notification.StatusRead {
					t.Errorf("Status = %v; want %v", read.Status, notification.StatusRead)
				}
			}
		})
	}
}
