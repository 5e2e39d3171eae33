package notation

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
)

const (
	// DefaultDivisions is used until the document declares its own <divisions>.
	DefaultDivisions = 4

	containerManifest = "META-INF/container.xml"
	fallbackScoreName = "score.xml"
	maxMemberSize     = 32 << 20
)

var zipMagic = []byte("PK\x03\x04")

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  string `xml:"alter"`
	Octave string `xml:"octave"`
}

type xmlStartStop struct {
	Type string `xml:"type,attr"`
}

type xmlElement struct {
	XMLName xml.Name
}

type xmlNotations struct {
	Tied          []xmlStartStop `xml:"tied"`
	Slurs         []xmlStartStop `xml:"slur"`
	Articulations []struct {
		Items []xmlElement `xml:",any"`
	} `xml:"articulations"`
}

type xmlNote struct {
	Pitch     *xmlPitch      `xml:"pitch"`
	Chord     *struct{}      `xml:"chord"`
	Grace     *struct{}      `xml:"grace"`
	Duration  string         `xml:"duration"`
	Type      string         `xml:"type"`
	Ties      []xmlStartStop `xml:"tie"`
	Notations []xmlNotations `xml:"notations"`
}

type xmlAttributes struct {
	Divisions string `xml:"divisions"`
}

type xmlContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// Parse 将乐谱文档（纯 XML 或压缩容器）解析为有序的音符序列。
// 任何无法解析的输入都返回空序列，而不是错误。
func Parse(doc []byte) []NoteEvent {
	payload, ok := resolvePayload(doc)
	if !ok {
		return []NoteEvent{}
	}
	notes, err := parseScore(payload)
	if err != nil {
		return []NoteEvent{}
	}
	return notes
}

// resolvePayload locates the score inside a compressed container: manifest rootfile,
// then score.xml, then the first .xml member. Plain documents pass through.
func resolvePayload(doc []byte) ([]byte, bool) {
	if !bytes.HasPrefix(doc, zipMagic) {
		return doc, true
	}

	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, false
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	if manifest, ok := members[containerManifest]; ok {
		if data, err := readMember(manifest); err == nil {
			var c xmlContainer
			if xml.Unmarshal(data, &c) == nil {
				for _, rf := range c.Rootfiles {
					if f, ok := members[strings.TrimPrefix(rf.FullPath, "/")]; ok {
						if data, err := readMember(f); err == nil {
							return data, true
						}
					}
				}
			}
		}
	}

	if f, ok := members[fallbackScoreName]; ok {
		if data, err := readMember(f); err == nil {
			return data, true
		}
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "META-INF/") || f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".xml") {
			if data, err := readMember(f); err == nil {
				return data, true
			}
		}
	}
	return nil, false
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxMemberSize))
}

func parseScore(data []byte) ([]NoteEvent, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	notes := []NoteEvent{}
	divisions := float64(DefaultDivisions)
	cursor, chordStart := 0.0, 0.0
	firstPart := ""

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return notes, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "part":
			// only the first part is read; later parts (or its siblings in timewise scores) are skipped
			id := attr(start, "id")
			if firstPart == "" {
				firstPart = id
				if firstPart == "" {
					firstPart = "\x00"
				}
			} else if id != firstPart {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case "attributes":
			var a xmlAttributes
			if err := dec.DecodeElement(&a, &start); err != nil {
				return nil, err
			}
			if d, ok := parsePositive(a.Divisions); ok {
				divisions = d
			}
		case "note":
			var n xmlNote
			if err := dec.DecodeElement(&n, &start); err != nil {
				return nil, err
			}
			duration, ok := parsePositive(n.Duration)
			if n.Grace != nil || !ok {
				continue
			}

			position := cursor
			if n.Chord != nil {
				position = chordStart
			} else {
				chordStart = cursor
				cursor += duration / divisions
			}

			if n.Pitch == nil {
				continue
			}
			ev, ok := buildEvent(n, duration, position)
			if ok {
				notes = append(notes, ev)
			}
		}
	}
}

func buildEvent(n xmlNote, duration, position float64) (NoteEvent, bool) {
	step := Step(strings.ToUpper(strings.TrimSpace(n.Pitch.Step)))
	if _, ok := stepSemitones[step]; !ok {
		return NoteEvent{}, false
	}
	octave, err := strconv.Atoi(strings.TrimSpace(n.Pitch.Octave))
	if err != nil {
		return NoteEvent{}, false
	}

	ev := NoteEvent{
		Step:     step,
		Octave:   octave,
		Alter:    parseAlter(n.Pitch.Alter),
		Duration: duration,
		Type:     ParseNoteType(strings.TrimSpace(n.Type)),
		Position: position,
	}

	ties := n.Ties
	for _, nt := range n.Notations {
		ties = append(ties, nt.Tied...)
		for _, s := range nt.Slurs {
			switch s.Type {
			case "start":
				ev.SlurStart = true
			case "stop":
				ev.SlurEnd = true
			}
		}
		for _, group := range nt.Articulations {
			for _, item := range group.Items {
				if a, ok := articulations[item.XMLName.Local]; ok && ev.Articulation == "" {
					ev.Articulation = a
				}
			}
		}
	}
	for _, t := range ties {
		switch t.Type {
		case "start":
			ev.TieStart = true
		case "stop":
			ev.TieEnd = true
		}
	}
	return ev, true
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseAlter(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	a := int(math.Round(v))
	if a > 1 {
		return 1
	}
	if a < -1 {
		return -1
	}
	return a
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
