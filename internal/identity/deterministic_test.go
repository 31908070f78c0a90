package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("go-newsroom:article:budget-vote")
	second := UUID("  go-newsroom:article:budget-vote ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed keys to match, got %s and %s", first, second)
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestArticleUUIDIgnoresCase(t *testing.T) {
	if ArticleUUID("Budget-Vote") != ArticleUUID("budget-vote") {
		t.Fatal("expected article ids to be case insensitive")
	}
	if ArticleUUID("budget-vote") == ArticleUUID("budget-vote-2") {
		t.Fatal("expected distinct slugs to yield distinct ids")
	}
}

func TestCommentUUIDScopesByArticle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	if CommentUUID(a, "u1", "k") == CommentUUID(b, "u1", "k") {
		t.Fatal("expected comment ids to differ across articles")
	}
}
