package models

// ImageSlot 은 영상의 이미지 한 장에 대한 기록이다.
type ImageSlot struct {
	Path        string `json:"path"`
	Query       string `json:"query,omitempty"`
	Source      string `json:"source,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// ImageManifest 는 fetch-images 단계의 결과 목록이다.
// File: images.json
type ImageManifest struct {
	Images []ImageSlot `json:"images"`
}

// Downloaded 는 플레이스홀더가 아닌 이미지 수를 센다.
func (m *ImageManifest) Downloaded() int {
	n := 0
	for _, im := range m.Images {
		if !im.Placeholder {
			n++
		}
	}
	return n
}
