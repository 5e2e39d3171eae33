package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// 乐谱文件相关常量
const (
	MimeXML          = "application/xml"
	MimeTextXML      = "text/xml"
	MimeMusicXML     = "application/vnd.recordare.musicxml+xml"
	MimeMusicXMLZip  = "application/vnd.recordare.musicxml"
	MimeZip          = "application/zip"
	MimeOctetStream  = "application/octet-stream"
	MaxNotationBytes = 32 << 20
)

var (
	AllowedNotationExtensions = []string{".xml", ".musicxml", ".mxl"}
)
