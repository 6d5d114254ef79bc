package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	ClientID        string        `json:"client_id"`
	SessionParams   SessionParams `json:"session_params"`
	Player          PlayerMsg     `json:"player"`
}

type SessionParams struct {
	Seed             int64   `json:"seed"`
	CellSizeDeg      float64 `json:"cell_size_deg"`
	RenderRadius     int     `json:"render_radius"`
	InteractRadius   int     `json:"interact_radius"`
	SpawnPermille    int     `json:"spawn_permille"`
	TokenSpreadK     int     `json:"token_spread_k"`
	VictoryThreshold int     `json:"victory_threshold"`
	OriginLat        float64 `json:"origin_lat"`
	OriginLng        float64 `json:"origin_lng"`
}

// ACT kinds. STEP carries a discrete cell-unit vector, POSITION a continuous
// real-world fix; both movement kinds converge on the same cell math
// server-side.
const (
	ActStep     = "STEP"
	ActPosition = "POSITION"
	ActInteract = "INTERACT"
	ActRestart  = "RESTART"
)

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind"`

	// STEP
	DI int `json:"di,omitempty"`
	DJ int `json:"dj,omitempty"`

	// POSITION
	Lat float64 `json:"lat,omitempty"`
	Lng float64 `json:"lng,omitempty"`

	// INTERACT
	I int `json:"i,omitempty"`
	J int `json:"j,omitempty"`
}

// CELL (server -> client): a cell entered the visible window, changed content
// while visible, or left the window (Released=true). Bounds are only present
// on materialization.
type CellMsg struct {
	Type     string  `json:"type"`
	I        int     `json:"i"`
	J        int     `json:"j"`
	Token    uint16  `json:"token"`
	Released bool    `json:"released,omitempty"`
	SWLat    float64 `json:"sw_lat,omitempty"`
	SWLng    float64 `json:"sw_lng,omitempty"`
	NELat    float64 `json:"ne_lat,omitempty"`
	NELng    float64 `json:"ne_lng,omitempty"`
}

// PLAYER (server -> client): full player state after any accepted action.
type PlayerMsg struct {
	Type  string  `json:"type"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	CellI int     `json:"cell_i"`
	CellJ int     `json:"cell_j"`
	Held  uint16  `json:"held"`
	Score int     `json:"score"`
	Won   bool    `json:"won"`
}

// REJECT (server -> client): user-visible feedback for a refused interaction.
type RejectMsg struct {
	Type    string `json:"type"`
	I       int    `json:"i"`
	J       int    `json:"j"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
