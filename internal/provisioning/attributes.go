package provisioning

import (
	"encoding/json"
	"fmt"
	"time"
)

const channelVideo = "video"

// Attributes is the metadata record attached to a routed video task.
type Attributes struct {
	Type             string        `json:"type"`
	Name             string        `json:"name"`
	Direction        string        `json:"direction"`
	VideoRoom        string        `json:"videoRoom"`
	ConversationType string        `json:"conversationType"`
	CustomerInfo     CustomerInfo  `json:"customerInfo"`
	Conversations    Conversations `json:"conversations"`
	Conference       Conference    `json:"conference"`
	ServiceInfo      ServiceInfo   `json:"serviceInfo"`
}

type CustomerInfo struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Status      string `json:"status"`
	Channel     string `json:"channel"`
}

// Conversations feeds the platform's conversation reporting fields.
type Conversations struct {
	ConversationID         string `json:"conversation_id"`
	CustomerID             string `json:"customer_id"`
	ConversationAttribute1 string `json:"conversation_attribute_1"`
	ConversationLabel1     string `json:"conversation_label_1"`
	ConversationLabel2     string `json:"conversation_label_2"`
}

type Conference struct {
	Room   string `json:"room"`
	Status string `json:"status"`
}

type ServiceInfo struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	RequestTime string `json:"requestTime"`
}

// BuildAttributes assembles the task record for one customer request.
// roomName lands in both videoRoom and conference.room, customerIdentity in
// both customerInfo.identity and conversations.customer_id.
func BuildAttributes(service, customerName, customerIdentity, roomName, conversationID string, requestedAt time.Time) Attributes {
	return Attributes{
		Type:             channelVideo,
		Name:             service,
		Direction:        "inbound",
		VideoRoom:        roomName,
		ConversationType: channelVideo,
		CustomerInfo: CustomerInfo{
			Identity:    customerIdentity,
			DisplayName: customerName,
			Avatar:      "",
			Status:      "waiting",
			Channel:     channelVideo,
		},
		Conversations: Conversations{
			ConversationID:         conversationID,
			CustomerID:             customerIdentity,
			ConversationAttribute1: "",
			ConversationLabel1:     service,
			ConversationLabel2:     "",
		},
		Conference: Conference{
			Room:   roomName,
			Status: "pending",
		},
		ServiceInfo: ServiceInfo{
			Type:        channelVideo,
			Label:       service,
			RequestTime: formatRequestTime(requestedAt),
		},
	}
}

// Encode serializes the attributes as the platform expects them: JSON text.
func (a Attributes) Encode() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode task attributes: %w", err)
	}
	return string(b), nil
}

// ISO-8601 in UTC with millisecond precision, e.g. 2024-05-01T09:30:00.000Z.
func formatRequestTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
