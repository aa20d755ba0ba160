package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"qcloud/internal/domain"
)

// envelope is the outer shape shared by every response. Submit rejections
// carry "message", inquire rejections "enMessage".
type envelope struct {
	Success   *bool           `json:"success"`
	Message   string          `json:"message"`
	EnMessage string          `json:"enMessage"`
	Obj       json.RawMessage `json:"obj"`
}

func (e envelope) rejection() string {
	if msg := strings.TrimSpace(e.EnMessage); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return "request rejected by service"
}

// parseEnvelope checks the success flag. A success=false answer becomes a
// RemoteRejection carrying the server message.
func parseEnvelope(op string, body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, malformed(op, "parse response: %v", err)
	}
	if env.Success == nil {
		return envelope{}, malformed(op, "response has no member 'success'")
	}
	if !*env.Success {
		return envelope{}, domain.E(domain.CodeRemoteRejection, op, env.rejection(), nil)
	}
	if len(bytes.TrimSpace(env.Obj)) == 0 || bytes.Equal(bytes.TrimSpace(env.Obj), []byte("null")) {
		return envelope{}, malformed(op, "response has no member 'obj'")
	}
	return env, nil
}

func malformed(op, format string, args ...any) *domain.Error {
	msg := fmt.Sprintf(format, args...)
	return domain.E(domain.CodeResultDecode, op, msg, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, msg))
}

// flexString accepts a JSON string or number. The service documents these
// fields as strings but some deployments emit bare integers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return string(f)
}

func parseStep(op string, raw flexString) (int, error) {
	step, err := strconv.Atoi(strings.TrimSpace(raw.String()))
	if err != nil {
		return 0, malformed(op, "step %q is not an integer", raw)
	}
	return step, nil
}
