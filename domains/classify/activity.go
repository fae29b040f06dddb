package classify

import "github.com/gomantics/contribsync/libs/gitrepo"

// FromSnapshot converts the merged pull requests of an activity snapshot
// into classifier input.
func FromSnapshot(snap *gitrepo.ActivitySnapshot) []PullRequest {
	if snap == nil {
		return nil
	}
	prs := make([]PullRequest, 0, len(snap.PullRequests))
	for _, pr := range snap.PullRequests {
		merged := pr.MergedAt
		prs = append(prs, PullRequest{
			ID:        pr.Number,
			Title:     pr.Title,
			Additions: pr.Additions,
			Deletions: pr.Deletions,
			CreatedAt: merged,
			MergedAt:  &merged,
		})
	}
	return prs
}
