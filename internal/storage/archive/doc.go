// Package archive encodes and decodes synthetic snapshot archives.
//
// An archive is a tar stream holding:
//
//   - ./snapshot.json: the snapshot metadata, with a murmur3 checksum kept
//     in the PAX record SUPSIM.checksum
//   - ./protected.bin: present only for password protected archives; a
//     salted AEAD key-check record used to verify restore passwords
//   - ./padding.bin: filler bytes that give the archive a realistic size
//
// Decode accepts archives produced elsewhere as long as they carry a
// snapshot.json (or backup.json) entry; the checksum record is optional.
package archive
