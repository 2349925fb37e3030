package client

import (
	"context"
	"testing"
)

func TestLangChainGenerator_GenerateJSON(t *testing.T) {
	var gotBody map[string]any
	ts := newMockOpenAIServer(t, `{"plan":{"version":1}}`, func(body map[string]any) { gotBody = body })
	defer ts.Close()

	gen, err := NewLangChainGenerator(ts.URL, "test-key", "gpt-4o")
	if err != nil {
		t.Fatalf("NewLangChainGenerator() error = %v", err)
	}

	out, err := gen.GenerateJSON(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if out != `{"plan":{"version":1}}` {
		t.Errorf("GenerateJSON() = %q, want %q", out, `{"plan":{"version":1}}`)
	}
	if gen.Name() != "langchain-gpt-4o" {
		t.Errorf("Name() = %q, want %q", gen.Name(), "langchain-gpt-4o")
	}

	rf, _ := gotBody["response_format"].(map[string]any)
	if rf == nil || rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotBody["response_format"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v, want system and user entries", gotBody["messages"])
	}
}

func TestLangChainGenerator_EmptyToken(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewLangChainGenerator("http://127.0.0.1:0", "", "gpt-4o"); err == nil {
		t.Error("NewLangChainGenerator() with empty token should fail")
	}
}
