package dto

type SceneImageResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	SceneType string `json:"scene_type"`
	Setting   string `json:"setting"`
}
