package replay

import "time"

// Generator constants.
const (
	playersPerTeam    = 11
	defaultFrameRate  = 5.0
	playerStepSigma   = 1.2 // m/s change per frame
	ballStepSigma     = 4.0
	maxPlayerSpeed    = 8.0
	pitchLength       = 105.0
	pitchWidth        = 68.0
	millisPerSecond   = 1000
	percentMultiplier = 100
)

// Runner constants.
const (
	WorkerChannelMultiplier = 2
	pollInterval            = 200 * time.Millisecond
	pctTolerance            = 1e-6
	defaultTop              = 10
	defaultWaitTimeout      = 2 * time.Minute
)
