package showdown

// ReplayRef is one entry from the replay search index. Fields beyond
// id/format/uploadtime are carried through to the output untouched.
type ReplayRef struct {
	ID         string   `json:"id"`
	Format     string   `json:"format"`
	Players    []string `json:"players"`
	UploadTime int64    `json:"uploadtime"` // unix seconds, UTC
	Rating     int      `json:"rating"`
	Private    int      `json:"private"`
}
