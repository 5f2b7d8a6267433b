package services

import (
	"testing"

	"github.com/terraincognita07/tempo/internal/models"
)

func TestNormalizeLinkURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "https://example.com/docs", want: "https://example.com/docs"},
		{raw: "  http://localhost:8080 ", want: "http://localhost:8080"},
		{raw: "ftp://example.com", wantErr: true},
		{raw: "javascript:alert(1)", wantErr: true},
		{raw: "/relative/path", wantErr: true},
		{raw: "https://", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeLinkURL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected validation error, got %q", tt.raw, got)
			}
			assertErrorKind(t, err, ErrValidation)
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

func TestQuickLinkLifecycle(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Links", nil, false, admin)
	service := NewQuickLinkService(env.repos.QuickLinks)

	docs, err := service.Create(CreateQuickLinkInput{ProjectID: project.ID, Title: "Docs", URL: "https://example.com/docs", Category: "Docs"})
	if err != nil {
		t.Fatalf("create docs: %v", err)
	}
	misc, err := service.Create(CreateQuickLinkInput{ProjectID: project.ID, Title: "Misc", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("create misc: %v", err)
	}
	if docs.Category != models.LinkCategoryDocs || misc.Category != models.LinkCategoryOther {
		t.Fatalf("expected docs and other categories, got %q and %q", docs.Category, misc.Category)
	}
	if docs.Position != 0 || misc.Position != 1 {
		t.Fatalf("expected positions 0 and 1, got %d and %d", docs.Position, misc.Position)
	}

	_, err = service.Create(CreateQuickLinkInput{ProjectID: project.ID, Title: "Bad", URL: "https://example.com", Category: "videos"})
	assertErrorKind(t, err, ErrValidation)

	if err := service.Reorder(project.ID, []uint{misc.ID, docs.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	links, err := service.List(project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) != 2 || links[0].ID != misc.ID {
		t.Fatalf("expected misc first after reorder, got %+v", links)
	}

	title := "Handbook"
	updated, err := service.Update(docs.ID, UpdateQuickLinkInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Handbook" {
		t.Fatalf("expected renamed link, got %q", updated.Title)
	}

	if err := service.Delete(docs.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = service.Get(docs.ID)
	assertErrorKind(t, err, ErrNotFound)
}
