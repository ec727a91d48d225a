// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

/*
Package tex2 reads and writes tex2 raster textures stored in Texture1/Texture2
archive entries.

Layout (little-endian):

	[0x11 0x40][u32 height][u32 width][u8 mipmap levels][RGBA8 pixels...]

Pixels of every mipmap level are concatenated, level 0 (full resolution) first.
Level n holds (width>>n)*(height>>n) pixels, so level offsets are computed from
the dimensions instead of being stored. Levels above zero are only addressable
when both dimensions are powers of two.

Some captured files declare a level count that does not match the payload.
Parse reads exactly the declared chain and reports unused trailing bytes;
ParseUnbounded reads every pixel present. Inspect summarizes the difference:

	report, err := tex2.Inspect(data)
	if err != nil {
	    return err
	}
	fmt.Println(report.ExtraPixels, report.UnusedBytes)

An *Image implements image.Image for its selected level, so it can be passed
to image/png directly or through EncodePNG:

	img, _, err := tex2.ParseUnbounded(data)
	if err != nil {
	    return err
	}
	if err := img.SetLevel(1); err != nil {
	    return err
	}
	err = tex2.EncodePNG(out, img)
*/
package tex2
