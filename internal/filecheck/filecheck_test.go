package filecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	dErrors "kycgate/pkg/domain-errors"
)

type FileCheckSuite struct {
	suite.Suite
}

func TestFileCheckSuite(t *testing.T) {
	suite.Run(t, new(FileCheckSuite))
}

func (s *FileCheckSuite) TestAcceptedUploads() {
	cases := []struct {
		filename string
		mime     string
	}{
		{"cedula.pdf", "application/pdf"},
		{"scan.jpg", "image/jpeg"},
		{"scan.JPEG", "image/jpg"},
		{"front.PNG", "image/png"},
		{"anim.gif", "image/gif"},
	}
	for _, tc := range cases {
		s.Run(tc.filename, func() {
			assert.NoError(s.T(), Check(tc.filename, tc.mime, 1024))
		})
	}
}

func (s *FileCheckSuite) TestMissingFilename() {
	err := Check("", "application/pdf", 1024)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMissingFilename))
}

func (s *FileCheckSuite) TestUnsupportedExtension() {
	err := Check("malware.exe", "application/pdf", 1024)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnsupportedExtension))
	assert.Contains(s.T(), err.Error(), ".exe")
}

func (s *FileCheckSuite) TestExtensionCheckedBeforeMIME() {
	err := Check("doc.docx", "application/msword", 1024)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnsupportedExtension))
	assert.Contains(s.T(), err.Error(), "extension")
}

func (s *FileCheckSuite) TestUnsupportedMIME() {
	err := Check("doc.pdf", "text/html", 1024)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnsupportedMIME))
	assert.Contains(s.T(), err.Error(), "text/html")
}

func (s *FileCheckSuite) TestSizeCeiling() {
	assert.NoError(s.T(), Check("doc.pdf", "application/pdf", MaxFileSize))

	err := Check("doc.pdf", "application/pdf", MaxFileSize+1)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeFileTooLarge))
}

func (s *FileCheckSuite) TestUnknownSizeSkipsCeiling() {
	assert.NoError(s.T(), Check("doc.pdf", "application/pdf", -1))
}
