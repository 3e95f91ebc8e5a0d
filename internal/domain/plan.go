package domain

// Segment 是视频时长上的一个等分片段；只用它的起点作为抽帧时间戳。
type Segment struct {
	Index     int     // 0-based
	Start     float64 // 秒；Start = Index * SegmentDuration
	FramePath string  // <tempDir>/segment_<Index+1>.jpg
}

// SegmentPlan 是单个视频的抽帧计划。
//
// 约束：len(Segments) == Count，且按 Index 升序（即时间顺序）。
type SegmentPlan struct {
	Count           int
	SegmentDuration float64
	Segments        []Segment
}

// FramePaths 按片段顺序返回所有帧文件路径。
func (p SegmentPlan) FramePaths() []string {
	out := make([]string, 0, len(p.Segments))
	for _, s := range p.Segments {
		out = append(out, s.FramePath)
	}
	return out
}
