package resolver

import (
	"sppin/internal/authority"
	"sppin/internal/language"
	"sppin/internal/taxa"
)

// assemble computes the summary once data is final: the first accepted
// record in discovery order, labeled with the run's status message.
func assemble(env *taxa.Envelope, dialect authority.Dialect) {
	env.Summary = Summarize(*env, dialect)
}

// Summarize projects the first accepted record of env, or returns nil.
func Summarize(env taxa.Envelope, dialect authority.Dialect) *taxa.Summary {
	for _, rec := range env.Data {
		if !rec.AcceptanceFlag {
			continue
		}
		summary := &taxa.Summary{
			ScientificName: rec.ScientificName,
			Rank:           rec.Rank,
			AuthorityURL:   dialect.AuthorityURL(rec.AuthorityNativeID),
			MatchMethod:    env.StatusMessage,
		}
		if name, ok := rec.FirstCommonName(language.IsEnglish); ok {
			summary.CommonName = name
		}
		return summary
	}
	return nil
}
