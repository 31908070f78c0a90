package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArticleUUID derives the article id from its normalized slug.
func ArticleUUID(slug string) uuid.UUID {
	return UUID("go-newsroom:article:" + strings.ToLower(strings.TrimSpace(slug)))
}

// CommentUUID derives a comment id from its article, author and creation key.
func CommentUUID(articleID uuid.UUID, authorID string, key string) uuid.UUID {
	return UUID("go-newsroom:comment:" + articleID.String() + ":" + strings.TrimSpace(authorID) + ":" + strings.TrimSpace(key))
}
