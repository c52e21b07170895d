package mailer

import (
	"strings"
	"testing"
)

func TestRenderWelcomeJob(t *testing.T) {
	job := WelcomeJob("ana@example.com", "Ana Souza", "ana")
	if job.To != "ana@example.com" || job.Template != "welcome" {
		t.Fatalf("job = %+v", job)
	}

	subject, text, html, err := Render(job)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Welcome to VideoTube" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(text, "Ana Souza") || !strings.Contains(text, "@ana") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(html, "Ana Souza") || !strings.Contains(html, "@ana") {
		t.Errorf("html = %q", html)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	job := WelcomeJob("x@example.com", `<script>alert("x")</script>`, "x")
	_, _, html, err := Render(job)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("fullname not escaped in html body")
	}
}

func TestRenderPassesThroughExplicitBodies(t *testing.T) {
	job := EmailJob{To: "x@example.com", Subject: "s", Text: "t", HTML: "<p>h</p>"}
	subject, text, html, err := Render(job)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "s" || text != "t" || html != "<p>h</p>" {
		t.Errorf("pass-through changed the job: %q %q %q", subject, text, html)
	}
}
