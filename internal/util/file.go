package util

import (
	"mime"
	"path/filepath"
	"strings"
)

var notationMimeTypes = []string{
	MimeXML,
	MimeTextXML,
	MimeMusicXML,
	MimeMusicXMLZip,
	MimeZip,
	"application/x-zip-compressed",
	MimeOctetStream,
}

// IsNotationContentType 校验对象存储返回的 Content-Type 是否可能是乐谱文件。
// 空值按可接受处理，部分存储不返回该头。
func IsNotationContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	mediaType = strings.ToLower(mediaType)
	for _, allowed := range notationMimeTypes {
		if mediaType == allowed {
			return true
		}
	}
	return strings.HasSuffix(mediaType, "+xml")
}

// IsNotationFile 根据扩展名判断
func IsNotationFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedNotationExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
