// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

/*
Package vpk provides read, extract, and write operations for VPK (Valve Pak)
container sets in the three known directory-file layouts: version 1,
version 2, and the Respawn variant used by Titanfall-era titles. A VPK set
is a directory file ("pak_dir.vpk") describing a tree of logical paths,
plus numbered archive files ("pak_000.vpk", "pak_001.vpk", ...) holding the
actual data.

# Detection and reading

Detect the variant and parse the directory file in one call:

	f, err := os.Open("pak_dir.vpk")
	if err != nil {
	    return err
	}
	defer f.Close()

	pak, err := vpk.OpenPak(f)
	if err != nil {
	    return err
	}
	for _, path := range pak.Paths() {
	    data, _ := pak.ReadFile("archives/", "pak", path)
	    // use data
	}

When the variant is known ahead of time, use the typed readers directly:

	v1, err := vpk.ReadVPKVersion1(f)
	v2, err := vpk.ReadVPKVersion2(f)
	rp, err := vpk.ReadVPKRespawn(f)

Version 2 directory files additionally carry MD5 integrity sections and an
optional signature block; ReadVPKVersion2 validates their sizes and exposes
them on the parsed value.

# Respawn archives

Respawn entries are split into fragments that may live in different
archives and may be LZHAM-compressed. The codec is not bundled; supply one
through the Decompress hook before reading compressed content:

	rp.Decompress = func(src []byte, uncompressedLen int) ([]byte, error) {
	    return lzham.Decompress(src, uncompressedLen)
	}

Audio assets (".wav") are stored without their RIFF header. Reconstruction
synthesizes a standard 44 byte header from CAM sidecar metadata
("pak_000.vpk.cam") when available, or from defaults otherwise:

	cache := vpk.NewCamCache()
	if err := rp.ReadAllCams("archives/", "pak", cache); err != nil {
	    return err
	}

# Extracting

Extract everything to a directory with parallel workers and path filters:

	res, err := vpk.ExtractAll(pak, "archives/", "pak", "out/", vpk.ExtractOptions{
	    MaxWorkers: 4,
	    Filter: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "scripts/**"},
	    },
	})

Large sets extract faster through memory-mapped archives:

	maps, err := vpk.OpenArchiveMaps("archives/", "pak", vpk.ReferencedArchives(pak))
	if err != nil {
	    return err
	}
	defer vpk.CloseArchiveMaps(maps)

	res, err := vpk.ExtractAll(pak, "archives/", "pak", "out/", vpk.ExtractOptions{
	    Maps: maps,
	})

# Writing

Directory files for version 1 and the Respawn variant round-trip through
WriteDir; version 2 writing is not supported and reports
ErrWriteUnsupported:

	if err := pak.WriteDir("out/pak_dir.vpk"); err != nil {
	    return err
	}
*/
package vpk
