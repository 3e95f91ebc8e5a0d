package domain

// FrameFile 是抽帧得到的一张 JPEG（位于临时目录，PDF 生成后删除）。
type FrameFile struct {
	Path   string
	Width  int
	Height int
}

// PdfArtifact 是单个视频的最终产物。
type PdfArtifact struct {
	Path       string
	Pages      int
	PageWidth  float64 // pt（1 像素 = 1 pt）
	PageHeight float64
	Duration   float64 // 源视频时长（秒）
	Remote     string  // 上传到 sink 后的位置；未配置 sink 时为空
}
