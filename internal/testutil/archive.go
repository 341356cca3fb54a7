package testutil

import "time"

// NoteClass is the archived class name used for note property fixtures.
const NoteClass = "AGNoteProperties"

// ArchiveRecord returns a keyed archive whose root object carries fields.
// Bools and numbers are stored inline as the archiver does; strings go to
// $objects behind a UID, time.Time values become NSDate objects and nil
// values point at $null.
func ArchiveRecord(fields *Dict) []byte {
	return EncodePlist(KeyedArchive(fields))
}

// KeyedArchive builds the archive dictionary without encoding it.
func KeyedArchive(fields *Dict) *Dict {
	objects := []any{"$null", nil, D("$classname", NoteClass, "$classes", []any{NoteClass, "NSObject"})}
	payload := &Dict{}
	var dateClass UID

	for i, k := range fields.Keys {
		var v any
		switch x := fields.Values[i].(type) {
		case nil:
			v = UID(0)
		case string:
			objects = append(objects, x)
			v = UID(len(objects) - 1)
		case time.Time:
			if dateClass == 0 {
				objects = append(objects, D("$classname", "NSDate", "$classes", []any{"NSDate", "NSObject"}))
				dateClass = UID(len(objects) - 1)
			}
			objects = append(objects, D("NS.time", x.Sub(referenceEpoch).Seconds(), "$class", dateClass))
			v = UID(len(objects) - 1)
		default:
			v = x
		}
		payload.Keys = append(payload.Keys, k)
		payload.Values = append(payload.Values, v)
	}
	payload.Keys = append(payload.Keys, "$class")
	payload.Values = append(payload.Values, UID(2))
	objects[1] = payload

	return D(
		"$version", 100000,
		"$archiver", "NSKeyedArchiver",
		"$top", D("root", UID(1)),
		"$objects", objects,
	)
}

// DeletedBlob is a validity blob with markedDeleted set.
func DeletedBlob() []byte {
	return ArchiveRecord(D("markedDeleted", true, "title", "gone"))
}

// LiveBlob is a validity blob without the markedDeleted field.
func LiveBlob() []byte {
	return ArchiveRecord(D("title", "kept", "pinned", false))
}
