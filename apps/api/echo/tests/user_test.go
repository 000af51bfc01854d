package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/kasongo/elimu/apps/api/echo"
	"github.com/kasongo/elimu/core/user"
	testutil "github.com/kasongo/elimu/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "secret123", user.RoleStudent)

	loginBody := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}

	tests := []httpTest{
		{
			name: "Unknown email", body: loginBody("nobody@test.cd", "secret123"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Wrong password", body: loginBody("amani@test.cd", "nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{name: "Missing fields", body: loginBody("", ""), wantCode: http.StatusBadRequest},
		{name: "Logged in", body: loginBody("amani@test.cd", "secret123"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "Logged in" {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.Token == "" {
					t.Error("Token is empty")
				}
			}
		})
	}
}

func Test_userApi_me(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "secret123", user.RoleStudent)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Own profile", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// A freshly issued token must clear the JWT middleware and reach the
// protected handler, not bounce with 401.
func Test_userApi_tokenRoundTrip(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "secret123", user.RoleStudent)

	req, rec := newAuthRequest(http.MethodGet, "/v1/class-requests/mine", getToken(t, usr))
	app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}
	checkCodeAndData(t, tt, rec)
}

func Test_userApi_refreshToken(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Amani", "amani@test.cd", "secret123", user.RoleStudent)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %v", rec.Code, rec.Body.String())
	}
	var resp echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Token is empty")
	}
}
