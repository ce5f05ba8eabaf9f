package core

import "strings"

// StopwordSet is a set of lowercase tokens excluded from text processing
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from the given words
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the token is a stopword
func (s StopwordSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// EnglishStopwords is the standard English stopword set. It is shared by the
// normalizer (optional removal) and the vectorizer (always applied).
var EnglishStopwords = NewStopwordSet(strings.Fields(englishStopwordList)...)

const englishStopwordList = `
a about above across after afterwards again against ain all almost alone along
already also although always am among amongst amoungst amount an and another any
anyhow anyone anything anyway anywhere are aren aren't around as at back be became
because become becomes becoming been before beforehand behind being below beside
besides between beyond bill both bottom but by call can cannot cant co con could
couldn couldn't couldnt cry d de describe detail did didn didn't do does doesn
doesn't doing don don't done down due during each eg eight either eleven else
elsewhere empty enough etc even ever every everyone everything everywhere except
few fifteen fify fill find fire first five for former formerly forty found four
from front full further get give go had hadn hadn't has hasn hasn't hasnt have
haven haven't having he hence her here hereafter hereby herein hereupon hers
herself him himself his how however hundred i ie if in inc indeed interest into
is isn isn't it it's its itself just keep last latter latterly least less ll ltd
m ma made many may me meanwhile might mightn mightn't mill mine more moreover most
mostly move much must mustn mustn't my myself name namely needn needn't neither
never nevertheless next nine no nobody none noone nor not nothing now nowhere o
of off often on once one only onto or other others otherwise our ours ourselves
out over own part per perhaps please put rather re s same see seem seemed seeming
seems serious several shan shan't she she's should should've shouldn shouldn't
show side since sincere six sixty so some somehow someone something sometime
sometimes somewhere still such system t take ten than that that'll the their
theirs them themselves then thence there thereafter thereby therefore therein
thereupon these they thick thin third this those though three through throughout
thru thus to together too top toward towards twelve twenty two un under until up
upon us ve very via was wasn wasn't we well were weren weren't what whatever when
whence whenever where whereafter whereas whereby wherein whereupon wherever
whether which while whither who whoever whole whom whose why will with within
without won won't would wouldn wouldn't y yet you you'd you'll you're you've your
yours yourself yourselves
`
