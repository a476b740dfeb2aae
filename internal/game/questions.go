package game

import "github.com/valyala/fastrand"

// questionPool is the fixed set used when a round is opened without an
// explicit question.
var questionPool = []string{
	"Who do you think is acting most suspicious?",
	"Who is giving the strangest answers tonight?",
	"Who has the strongest poker face?",
	"Who would survive the longest alone in the woods?",
	"Who would lose a game of hide and seek first?",
	"Who would forget their own birthday first?",
	"Who would you trust to guard the last candle?",
	"Who laughed at the worst possible moment?",
	"Who seems a little too calm right now?",
	"Who would make the best double agent?",
	"Who is most likely to be out after midnight?",
	"Who would volunteer to check the cellar?",
}

func RandomQuestion() string {
	return questionPool[fastrand.Uint32n(uint32(len(questionPool)))]
}
