package report

// Normalize upgrades a stored document into the current shape without
// mutating the input. Sections that still carry the singular image field
// and no slot array get a four-slot array with the old value in slot 0;
// the singular field is always dropped. Sections already in slot-array
// shape keep their slots, short arrays are padded to four, and the
// media map is guaranteed to hold all seven channels. Running Normalize
// twice yields the same document as running it once.
func Normalize(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()

	out.DAOverall.Images, out.DAOverall.Image =
		normalizeSlots(out.DAOverall.Images, out.DAOverall.Image)
	out.Partnership.Images, out.Partnership.Image =
		normalizeSlots(out.Partnership.Images, out.Partnership.Image)

	if out.MediaDetails == nil {
		out.MediaDetails = make(map[Channel]MediaSection, len(Channels()))
	}
	for channel, section := range out.MediaDetails {
		section.Images, section.Image = normalizeSlots(section.Images, section.Image)
		out.MediaDetails[channel] = section
	}
	for _, channel := range Channels() {
		if _, ok := out.MediaDetails[channel]; ok {
			continue
		}
		out.MediaDetails[channel] = MediaSection{Images: emptySlots()}
	}

	return out
}

func normalizeSlots(slots []ImageSlot, legacy *string) ([]ImageSlot, *string) {
	if slots == nil {
		slots = emptySlots()
		if legacy != nil {
			slots[0] = ImageSlot{Src: *legacy, IncludeInEmail: true}
		}
		return slots, nil
	}
	for len(slots) < SlotCount {
		slots = append(slots, ImageSlot{})
	}
	return slots, nil
}

func emptySlots() []ImageSlot {
	return make([]ImageSlot, SlotCount)
}
