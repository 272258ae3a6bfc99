package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/garrettladley/medibook/internal/version"
	"github.com/garrettladley/medibook/internal/xhttp"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func Backoff(d time.Duration) slog.Attr {
	const backoffKey = "backoff"
	return slog.Duration(backoffKey, d)
}

func Interval(d time.Duration) slog.Attr {
	const intervalKey = "interval"
	return slog.Duration(intervalKey, d)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.GetRequestIP(r))
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func ClientVersion(clientVersion string) slog.Attr {
	const clientVersionKey = "client_version"
	return slog.String(clientVersionKey, clientVersion)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func Unread(count int) slog.Attr {
	const unreadKey = "unread"
	return slog.Int(unreadKey, count)
}

func SessionID(id string) slog.Attr {
	const sessionIDKey = "session_id"
	return slog.String(sessionIDKey, id)
}

func UserID(id string) slog.Attr {
	const userIDKey = "user_id"
	return slog.String(userIDKey, id)
}

func NotificationID(id string) slog.Attr {
	const notificationIDKey = "notification_id"
	return slog.String(notificationIDKey, id)
}

func Op(op string) slog.Attr {
	const opKey = "op"
	return slog.String(opKey, op)
}

func State(state string) slog.Attr {
	const stateKey = "state"
	return slog.String(stateKey, state)
}

func Type(t string) slog.Attr {
	const typeKey = "type"
	return slog.String(typeKey, t)
}

func Data(data string) slog.Attr {
	const dataKey = "data"
	return slog.String(dataKey, data)
}

func Backend(name string) slog.Attr {
	const backendKey = "backend"
	return slog.String(backendKey, name)
}
