package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semillerodigital/insights/core/notification"
	"github.com/semillerodigital/insights/tests"
)

func Test_notificationApi_send(t *testing.T) {
	env := newTestEnv(t, testutil.ClassroomFixture{})
	profToken := env.token(t, "profesor1@example.com")
	studentToken := env.token(t, "maria@example.com")

	valid := []byte(`{
		"type": "announcement",
		"title": "Clase cancelada",
		"message": "No hay clase el viernes",
		"recipients": [
			{"userId": "u1", "email": "Maria@Example.com", "name": "María", "role": "student"},
			{"userId": "u2", "name": "Juan", "preferences": {"email": false}}
		],
		"metadata": {"courseId": "c1"}
	}`)
	discord := []byte(`{
		"type": "assignment_due",
		"title": "Entrega mañana",
		"message": "Suban el proyecto",
		"recipients": [{"userId": "u1", "preferences": {"discord": true, "discordId": "111"}}]
	}`)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/notifications", body: valid, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", method: http.MethodPost, path: "/v1/notifications", body: valid, token: "garbage",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "students cannot notify", method: http.MethodPost, path: "/v1/notifications", body: valid, token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "sent", method: http.MethodPost, path: "/v1/notifications", body: valid, token: profToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notification.Report{
				Message: "Notifications sent",
				Results: map[string]string{"email": "success", "discord": "failed", "telegram": "failed"},
				Errors:  []string{"discord: not configured", "telegram: not configured"},
			}),
		},
		{
			name: "unconfigured channel", method: http.MethodPost, path: "/v1/notifications", body: discord, token: profToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notification.Report{
				Message: "Notifications sent",
				Results: map[string]string{"email": "success", "discord": "failed", "telegram": "failed"},
				Errors:  []string{"discord: not configured", "telegram: not configured"},
			}),
		},
		{
			name: "validation", method: http.MethodPost, path: "/v1/notifications", token: profToken,
			body:     []byte(`{"type": "spam", "title": "  ", "message": "hola", "recipients": [{"email": "nope"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"type": "type must be one of [new_submission assignment_due grade_assigned announcement]",
				"title": "this field is required",
				"recipients[0].userId": "this field is required",
				"recipients[0].email": "email must be a valid email address"
			}`),
		},
		{
			name: "no recipients", method: http.MethodPost, path: "/v1/notifications", token: profToken,
			body:     []byte(`{"type": "announcement", "title": "Hola", "message": "hola", "recipients": []}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"recipients": "recipients must contain at least 1 item"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, env.do(tt))
		})
	}

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1, "only the first recipient accepts email")
	assert.Equal(t, "maria@example.com", sent[0].To[0].Address)

	recs, err := env.notifRepo.QueryNotifications(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"u1", "u2"}, recs[1].Recipients)
	assert.Equal(t, "c1", recs[1].Metadata.CourseID)
}

func Test_notificationApi_history(t *testing.T) {
	env := newTestEnv(t, testutil.ClassroomFixture{})
	token := env.token(t, "coordinador@semillerodigital.org")
	ctx := context.Background()

	for _, title := range []string{"uno", "dos", "tres"} {
		_, err := env.notifRepo.SaveNotification(ctx, notification.Record{Type: notification.TypeAnnouncement, Title: title})
		require.NoError(t, err)
	}

	rec := env.do(httpTest{path: "/v1/notifications?limit=2", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []notification.Record
	unmarchall(t, rec, &recs)
	require.Len(t, recs, 2)
	assert.Equal(t, "tres", recs[0].Title)

	tt := httpTest{
		path: "/v1/notifications?limit=lots", token: token,
		wantCode: http.StatusBadRequest, wantData: []byte(`{"limit": "limit must be an integer"}`),
	}
	checkCodeAndData(t, tt, env.do(tt))
}
