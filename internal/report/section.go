package report

import "strings"

// SectionID names one of the independently mergeable parts of a document.
// The wire forms are daOverall, partnership, attachmentNote, senderName and
// media_<channel> where <channel> is one of the seven known channels.
type SectionID string

const (
	SectionDAOverall      SectionID = "daOverall"
	SectionPartnership    SectionID = "partnership"
	SectionAttachmentNote SectionID = "attachmentNote"
	SectionSenderName     SectionID = "senderName"
)

const mediaSectionPrefix = "media_"

// MediaSectionID builds the section identifier for a channel update.
func MediaSectionID(c Channel) SectionID {
	return SectionID(mediaSectionPrefix + string(c))
}

// MediaChannel returns the channel suffix of a media_<channel> identifier.
// The second return is false when s is not a media section id at all; the
// returned channel may still be outside the known set.
func (s SectionID) MediaChannel() (Channel, bool) {
	raw := string(s)
	if !strings.HasPrefix(raw, mediaSectionPrefix) {
		return "", false
	}
	return Channel(strings.TrimPrefix(raw, mediaSectionPrefix)), true
}

// Valid reports whether s is one of the five recognized identifier forms.
func (s SectionID) Valid() bool {
	switch s {
	case SectionDAOverall, SectionPartnership, SectionAttachmentNote, SectionSenderName:
		return true
	}
	if channel, ok := s.MediaChannel(); ok {
		return ValidChannel(channel)
	}
	return false
}
