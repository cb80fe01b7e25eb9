package replay

import "time"

// Config holds configuration for a replay run.
type Config struct {
	BaseURL     string        // Base URL of the service
	MatchID     string        // Match id; a random one is generated when empty
	Frames      int           // Number of frames to generate
	FrameRate   float64       // Frames per second of the synthetic match
	Seed        uint64        // Seed of the synthetic match
	Workers     int           // Number of concurrent submitters
	Top         int           // Number of dominance entries to fetch per team
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // How long to wait for the service to process every frame
	OutputFile  string        // Output file for generated frames
	Verbose     bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	FramesGenerated int
	Submitted       int
	Accepted        int
	Duplicate       int
	Failed          int
	Processed       int
	Invalid         int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
