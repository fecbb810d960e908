package model

// Point awards and penalties credited through the ledger. The reason string
// is stored alongside every delta.
const (
	PointsJoinGame            = 10
	PointsWinAsVillager       = 5
	PointsWinAsWolf           = 7
	PointsWinAsLover          = 10
	PointsWinAsTanner         = 10
	PointsStartSuccessfulGame = 2
	PointsDeathPenalty        = -1
	PointsChangeVotePenalty   = -1
	PointsHunterKillsWolf     = 2
	PointsWitchPoisonWolf     = 2
	PointsVotedWolf           = 2
	PointsVotedInnocent       = -1
	PointsDidntVote           = -5
	PointsProstituteProtected = 2
	PointsDoctorProtected     = 2
	PointsWitchProtected      = 2
	PointsCupidLinkWolf       = 2
	PointsSpeakWhileDead      = -1
)

const (
	ReasonJoinGame            = "joinGame"
	ReasonWinAsVillager       = "winAsVillager"
	ReasonWinAsWolf           = "winAsWolf"
	ReasonWinAsLover          = "winAsLover"
	ReasonWinAsTanner         = "winAsTanner"
	ReasonStartSuccessfulGame = "startSuccessfulGame"
	ReasonDeathPenalty        = "deathPenalty"
	ReasonChangeVotePenalty   = "changeVotePenalty"
	ReasonHunterKillsWolf     = "hunterKillsWolf"
	ReasonWitchPoisonWolf     = "witchPoisonWolf"
	ReasonVotedWolf           = "votedWolf"
	ReasonVotedInnocent       = "votedInnocent"
	ReasonDidntVote           = "didntVote"
	ReasonProstituteProtected = "prostituteProtected"
	ReasonDoctorProtected     = "doctorProtected"
	ReasonWitchProtected      = "witchProtected"
	ReasonCupidLinkWolf       = "cupidLinkWolf"
	ReasonSpeakWhileDead      = "speakWhileDead"
)
