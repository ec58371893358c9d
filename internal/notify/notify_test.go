package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.got = append(r.got, n)
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, b}

	f.Notify(context.Background(), Error("s1", "order.create", "Ошибка при создании заказа"))

	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Equal(t, LevelError, a.got[0].Level)
	assert.Equal(t, "s1", b.got[0].SessionID)
	assert.False(t, a.got[0].CreatedAt.IsZero())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Notify(context.Background(), Success("s1", "sms.send", "Код отправлен"))
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "session_id=s1")

	buf.Reset()
	l.Notify(context.Background(), Error("s2", "sms.verify", "Ошибка верификации SMS"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "operation=sms.verify")
}
