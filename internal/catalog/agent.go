package catalog

import (
	"net/url"
	"strings"
)

// DefaultTrackingSource tags outbound agent links so agents can attribute the referral.
const DefaultTrackingSource = "xfinds"

// TrackingURL decorates an offer deep link with the referral source. Links that cannot be
// parsed get the parameter appended verbatim rather than being dropped.
func TrackingURL(agent *Agent, link, source string) string {
	if source == "" {
		source = DefaultTrackingSource
	}
	link = strings.TrimSpace(link)
	if link == "" && agent != nil {
		link = agent.SiteURL
	}
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		sep := "?"
		if strings.Contains(link, "?") {
			sep = "&"
		}
		return link + sep + "source=" + url.QueryEscape(source)
	}

	q := u.Query()
	q.Set("source", source)
	if agent != nil && agent.Slug != "" && q.Get("ref") == "" {
		q.Set("ref", agent.Slug)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AgentIndex maps agent ids to agents for constant-time lookups.
type AgentIndex map[string]*Agent

// IndexAgents builds an AgentIndex. Later duplicates win.
func IndexAgents(agents []Agent) AgentIndex {
	index := make(AgentIndex, len(agents))
	for i := range agents {
		index[agents[i].ID] = &agents[i]
	}
	return index
}

// Lookup returns the agent or nil when unknown.
func (idx AgentIndex) Lookup(id string) *Agent {
	if idx == nil {
		return nil
	}
	return idx[id]
}
