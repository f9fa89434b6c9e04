// Package uploads stores project media and profile files in the object store
// under a per-user prefix.
package uploads

import "github.com/dataportfolio/portfolio-api/internal/events"

const (
	BucketProjectImages = "project-images"
	BucketProjectFiles  = "project-files"
	BucketProfile       = "profile"
)

// Kind describes where an upload goes and what it may contain.
type Kind struct {
	Name   string
	Bucket string
	// Folder is forced for profile kinds; otherwise the caller may choose one.
	Folder     string
	ImagesOnly bool
	// Topic, when set, is published after a successful upload.
	Topic string
}

var kinds = map[string]Kind{
	"image":    {Name: "image", Bucket: BucketProjectImages, ImagesOnly: true},
	"document": {Name: "document", Bucket: BucketProjectFiles},
	"avatar":   {Name: "avatar", Bucket: BucketProfile, Folder: "avatar", ImagesOnly: true, Topic: events.TopicAvatar},
	"resume":   {Name: "resume", Bucket: BucketProfile, Folder: "resume", Topic: events.TopicResume},
}

func LookupKind(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}
