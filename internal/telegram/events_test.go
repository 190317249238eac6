package telegram

import "testing"

func TestClassifyStartWithPayload(t *testing.T) {
	ev, ok := classify(Update{Message: &Message{
		From: &User{ID: 1},
		Chat: Chat{ID: 1},
		Text: "/start Q3",
		Entities: []MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 6},
		},
	}})
	if !ok {
		t.Fatal("start update not classified")
	}
	if ev.Kind != EventStart {
		t.Fatalf("kind = %v, want EventStart", ev.Kind)
	}
	if ev.Payload != "q3" {
		t.Fatalf("payload = %q, want lowercased q3", ev.Payload)
	}
}

func TestClassifyCommandIsWholeToken(t *testing.T) {
	for _, tc := range []struct {
		text string
		kind EventKind
	}{
		{"/start", EventStart},
		{"/start q3", EventStart},
		{"/start@festbot q3", EventStart},
		{"/startle", EventText},
		{"/starting over", EventText},
	} {
		ev, ok := classify(Update{Message: &Message{
			From: &User{ID: 1},
			Chat: Chat{ID: 1},
			Text: tc.text,
		}})
		if !ok {
			t.Fatalf("%q not classified", tc.text)
		}
		if ev.Kind != tc.kind {
			t.Fatalf("%q kind = %v, want %v", tc.text, ev.Kind, tc.kind)
		}
	}
}

func TestClassifyPicksLargestPhoto(t *testing.T) {
	ev, ok := classify(Update{Message: &Message{
		From: &User{ID: 1},
		Chat: Chat{ID: 1},
		Photo: []PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "big", Width: 800},
		},
	}})
	if !ok || ev.Kind != EventPhoto {
		t.Fatalf("kind = %v, want EventPhoto", ev.Kind)
	}
	if ev.FileID != "big" {
		t.Fatalf("fileID = %q, want the largest rendition", ev.FileID)
	}
}

func TestClassifyImageDocument(t *testing.T) {
	ev, ok := classify(Update{Message: &Message{
		From:     &User{ID: 1},
		Chat:     Chat{ID: 1},
		Document: &Document{FileID: "doc-1", MimeType: "image/png"},
	}})
	if !ok || ev.Kind != EventPhoto {
		t.Fatalf("kind = %v, want EventPhoto for image documents", ev.Kind)
	}
	if ev.FileID != "doc-1" {
		t.Fatalf("fileID = %q", ev.FileID)
	}
}

func TestClassifyNonImageDocumentIsText(t *testing.T) {
	ev, ok := classify(Update{Message: &Message{
		From:     &User{ID: 1},
		Chat:     Chat{ID: 1},
		Document: &Document{FileID: "doc-1", MimeType: "application/pdf"},
	}})
	if !ok || ev.Kind != EventText {
		t.Fatalf("kind = %v, want EventText for non-image documents", ev.Kind)
	}
}

func TestClassifyCallbackWithoutMessageDropped(t *testing.T) {
	_, ok := classify(Update{CallbackQuery: &CallbackQuery{ID: "1", Data: "main"}})
	if ok {
		t.Fatal("callback without message must be dropped")
	}
}
