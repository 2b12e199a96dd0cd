package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

//DefaultMinArea is the contour area below which a region is treated as noise
const DefaultMinArea = 500

var regionColor = color.RGBA{0, 255, 0, 0}

//ExtractRegions finds the external connected regions of a binary motion mask
//and returns their axis-aligned bounding boxes in frame pixel coordinates.
//
//Connectivity follows OpenCV's contour convention (8-connected boundaries,
//external contours only - internal holes are not reported separately) and the
//area is the traced polygon area, so both sides of the filter use the same
//convention. Regions with area <= minArea are discarded. Traversal order is
//the raster order FindContours yields, which is deterministic for a given mask.
func ExtractRegions(mask gocv.Mat, minArea int) []image.Rectangle {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]image.Rectangle, 0)
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) > float64(minArea) {
			regions = append(regions, gocv.BoundingRect(contour))
		}
	}

	return regions
}

//DrawRegions plots the given bounding boxes on the frame together with an
//FPS/object counter line, for preview windows and recorded output
func DrawRegions(frame *gocv.Mat, regions []image.Rectangle, fps float64) {
	for _, r := range regions {
		gocv.Rectangle(frame, r, regionColor, 2)
	}

	statusText := fmt.Sprintf("FPS: %.1f | Objects: %d", fps, len(regions))
	gocv.PutText(frame, statusText, image.Pt(10, 30), gocv.FontHersheySimplex, 1, regionColor, 2)
}
