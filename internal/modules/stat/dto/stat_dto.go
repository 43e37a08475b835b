package dto

type StatsResponse struct {
	Users     int64 `json:"users"`
	Blogs     int64 `json:"blogs"`
	Notes     int64 `json:"notes"`
	Problems  int64 `json:"problems"`
	Resources int64 `json:"resources"`
}
