package pathstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
)

// Mirror writes tagged criteria into pathstore as a key tree, one node per
// line, each linked to its parent criterion.
type Mirror struct {
	client *Client
	log    *slog.Logger
}

func NewMirror(client *Client, log *slog.Logger) *Mirror {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Mirror{client: client, log: log}
}

// StudyKey is the root of a study's mirrored criteria.
func StudyKey(studyID string) string {
	return "trials/" + url.PathEscape(studyID) + "/criteria"
}

// NodeKey maps a line to its key: the qualified path with each path segment
// as its own key level, e.g. trials/NCT1/criteria/n/2/3.
func NodeKey(studyID string, kind criteria.SectionKind, path string) string {
	key := StudyKey(studyID) + "/" + kind.SequenceStart()
	if path != "" {
		key += "/" + strings.ReplaceAll(path, criteria.PathSeparator, "/")
	}
	return key
}

// ClearStudy removes a study's previous mirror.
func (m *Mirror) ClearStudy(ctx context.Context, studyID string) error {
	return m.client.DeleteNode(ctx, StudyKey(studyID), true)
}

// MirrorSection writes every line of a section and links each criterion to
// its parent. It returns the number of nodes written.
func (m *Mirror) MirrorSection(ctx context.Context, studyID, source string, kind criteria.SectionKind, lines []criteria.TaggedLine) (int, error) {
	bands := criteria.Resolve(kind)
	root := NodeKey(studyID, kind, "")

	err := m.client.PutNode(ctx, root, NodeRequest{
		Value: map[string]any{
			"study_id": studyID,
			"section":  kind.String(),
		},
		MergeMode:  "merge",
		MemoryType: "semantic",
		Salience:   0.3,
		Source:     source,
	})
	if err != nil {
		return 0, err
	}

	written := 0
	for _, l := range lines {
		key := NodeKey(studyID, kind, l.Path)
		salience := 0.6
		if criteria.RoleOf(l.Classification) != criteria.RoleCriterion {
			salience = 0.4
		}
		err := m.client.PutNode(ctx, key, NodeRequest{
			Value: map[string]any{
				"sequence_number":      l.SequenceNumber,
				"classification":       int(l.Classification),
				"band":                 criteria.BandName(bands, l.Classification),
				"leader_style":         l.LeaderStyle,
				"depth":                l.Depth,
				"depth_local_sequence": l.DepthLocalSequence,
				"qualified_path":       criteria.QualifiedPath(kind, l.Path),
				"text":                 l.Text,
			},
			MergeMode:  "merge",
			MemoryType: "semantic",
			Salience:   salience,
			Source:     source,
		})
		if err != nil {
			return written, fmt.Errorf("mirror %s: %w", key, err)
		}
		written++

		if l.Path == "" {
			continue
		}
		parent := NodeKey(studyID, kind, criteria.ParentPath(l.Path))
		if err := m.client.PutLink(ctx, LinkRequest{From: parent, To: key, Weight: 1, Summary: "parent criterion"}); err != nil {
			m.log.Warn("mirror link failed", "from", parent, "to", key, "error", err)
		}
	}
	return written, nil
}

// View lists the mirrored nodes of a study.
func (m *Mirror) View(ctx context.Context, studyID string, limit int) ([]ChildNode, error) {
	return m.client.ListChildren(ctx, StudyKey(studyID), limit)
}
