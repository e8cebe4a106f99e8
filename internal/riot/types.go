package riot

type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Puuid         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	DataVersion  string   `json:"dataVersion"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameID   int64  `json:"gameId"`
	GameMode string `json:"gameMode"`

	// GameDuration is in seconds when GameEndTimestamp is present (patch
	// 11.20+) and in milliseconds when it is not. The aggregator owns that
	// branch.
	GameDuration     int64 `json:"gameDuration"`
	GameEndTimestamp int64 `json:"gameEndTimestamp"`

	GameCreation int64         `json:"gameCreation"`
	Participants []Participant `json:"participants"`
}

type Participant struct {
	Puuid           string `json:"puuid"`
	SummonerName    string `json:"summonerName"`
	ChampionName    string `json:"championName"`
	TeamID          int    `json:"teamId"`
	Kills           int    `json:"kills"`
	Deaths          int    `json:"deaths"`
	Assists         int    `json:"assists"`
	TimeCCingOthers int    `json:"timeCCingOthers"`
	Win             bool   `json:"win"`
}
