package pushqueue

import "time"

type PushTask struct {
	ItemID  string `json:"-"`
	OwnerID string `json:"-"`

	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
}

type TaskResponse struct {
	Name       string    `json:"name"`
	CreateTime time.Time `json:"create_time"`
}

type relayTaskRequest struct {
	Task relayTask `json:"task"`
}

type relayTask struct {
	HTTPRequest relayHTTPRequest `json:"httpRequest"`
}

type relayHTTPRequest struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type relayTaskResponse struct {
	Name       string `json:"name"`
	CreateTime string `json:"createTime"`
}
