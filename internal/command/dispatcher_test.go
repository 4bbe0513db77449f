package command

import (
	"log/slog"
	"testing"
)

type capturedSend struct {
	msgType string
	payload any
}

func TestSendNoopWithoutCapability(t *testing.T) {
	d := NewDispatcher(slog.Default())
	if d.Send("r1", "goto", nil) {
		t.Errorf("send should fail silently with no capability")
	}
	if d.CanSend() {
		t.Errorf("CanSend should be false before the channel opens")
	}
}

func TestSendBuildsEnvelopePayload(t *testing.T) {
	d := NewDispatcher(slog.Default())
	var got capturedSend
	d.SetSend(func(msgType string, payload any) {
		got = capturedSend{msgType: msgType, payload: payload}
	})

	if !d.Send("r1", "goto", map[string]any{"latitude": 48.2}) {
		t.Fatalf("send failed with capability installed")
	}
	if got.msgType != "command.send" {
		t.Errorf("msgType = %s, want command.send", got.msgType)
	}
	p, ok := got.payload.(sendPayload)
	if !ok {
		t.Fatalf("payload type %T", got.payload)
	}
	if p.RobotID != "r1" || p.CommandType != "goto" || p.Parameters["latitude"] != 48.2 {
		t.Errorf("payload = %+v", p)
	}
}

func TestSendBatchPartialDelivery(t *testing.T) {
	d := NewDispatcher(slog.Default())
	calls := 0
	d.SetSend(func(string, any) {
		calls++
		if calls == 2 {
			// Channel drops mid-batch; remaining sends become no-ops.
			d.SetSend(nil)
		}
	})

	sent := d.SendBatch([]string{"r1", "r2", "r3"}, "return_home", nil)
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
}

func TestSendDefaultsParameters(t *testing.T) {
	d := NewDispatcher(slog.Default())
	var got capturedSend
	d.SetSend(func(msgType string, payload any) {
		got = capturedSend{msgType: msgType, payload: payload}
	})
	d.Send("r1", "stop", nil)
	if p := got.payload.(sendPayload); p.Parameters == nil {
		t.Errorf("parameters should marshal as an empty object, not null")
	}
}
