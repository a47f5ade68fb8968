package provisioning

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildAttributesLinksRoomAndIdentity(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 123000000, time.FixedZone("CEST", 2*3600))
	attrs := BuildAttributes("Support", "Camille", "customer_1", "room_1", "video-1", at)

	if attrs.VideoRoom != "room_1" || attrs.Conference.Room != "room_1" {
		t.Fatalf("room fields = %q / %q, want room_1", attrs.VideoRoom, attrs.Conference.Room)
	}
	if attrs.CustomerInfo.Identity != "customer_1" || attrs.Conversations.CustomerID != "customer_1" {
		t.Fatalf("identity fields = %q / %q, want customer_1", attrs.CustomerInfo.Identity, attrs.Conversations.CustomerID)
	}
	if attrs.ServiceInfo.RequestTime != "2024-05-01T07:30:00.123Z" {
		t.Fatalf("RequestTime = %q, want UTC millisecond ISO-8601", attrs.ServiceInfo.RequestTime)
	}
	if attrs.Name != "Support" || attrs.ServiceInfo.Label != "Support" || attrs.Conversations.ConversationLabel1 != "Support" {
		t.Fatalf("service labels not propagated: %+v", attrs)
	}
	if attrs.CustomerInfo.DisplayName != "Camille" {
		t.Fatalf("DisplayName = %q, want Camille", attrs.CustomerInfo.DisplayName)
	}
}

func TestAttributesEncodeUsesPlatformKeys(t *testing.T) {
	attrs := BuildAttributes("Billing", "Nom client", "customer_7", "room_7", "video-8", time.Unix(0, 0))
	encoded, err := attrs.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		t.Fatalf("decode encoded attributes: %v", err)
	}
	want := map[string]any{
		"type":             "video",
		"name":             "Billing",
		"direction":        "inbound",
		"videoRoom":        "room_7",
		"conversationType": "video",
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Fatalf("%s = %v, want %v", k, decoded[k], v)
		}
	}

	conv := decoded["conversations"].(map[string]any)
	for _, k := range []string{"conversation_id", "customer_id", "conversation_attribute_1", "conversation_label_1", "conversation_label_2"} {
		if _, ok := conv[k]; !ok {
			t.Fatalf("conversations missing key %q: %v", k, conv)
		}
	}
	if conv["conversation_id"] != "video-8" {
		t.Fatalf("conversation_id = %v, want video-8", conv["conversation_id"])
	}
	conference := decoded["conference"].(map[string]any)
	if conference["status"] != "pending" {
		t.Fatalf("conference.status = %v, want pending", conference["status"])
	}
	customer := decoded["customerInfo"].(map[string]any)
	if customer["status"] != "waiting" || customer["channel"] != "video" {
		t.Fatalf("customerInfo = %v", customer)
	}
}
