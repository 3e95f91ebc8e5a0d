package domain

// VideoFile 描述一次扫描得到的视频文件（只做 stat，不读文件内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - Dir 是 AbsPath 所在目录；临时抽帧目录与默认 PDF 输出都以它为基准
type VideoFile struct {
	AbsPath string
	RelPath string
	Dir     string
	Base    string // filename without ext
	Ext     string // ".mp4"
	Size    int64
}

// VideoJob 是一个待处理的视频：扫描结果 + 探测得到的时长（秒）。
type VideoJob struct {
	File     VideoFile
	Duration float64
}
