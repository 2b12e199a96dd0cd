package pipeline

import (
	"gocv.io/x/gocv"
)

//previewWindows groups the three on-screen views of a running detection
//session: the annotated frame, the isolated moving objects and the raw mask
type previewWindows struct {
	detection *gocv.Window
	objects   *gocv.Window
	mask      *gocv.Window
	maskBGR   gocv.Mat
	quit      bool
}

func newPreviewWindows() *previewWindows {
	return &previewWindows{
		detection: gocv.NewWindow("Motion Detection"),
		objects:   gocv.NewWindow("Moving Objects"),
		mask:      gocv.NewWindow("Motion Mask"),
		maskBGR:   gocv.NewMat(),
	}
}

func (p *previewWindows) show(annotated, isolated, mask gocv.Mat) {
	p.detection.IMShow(annotated)
	p.objects.IMShow(isolated)

	gocv.CvtColor(mask, &p.maskBGR, gocv.ColorGrayToBGR)
	p.mask.IMShow(p.maskBGR)

	if p.detection.WaitKey(1) == 'q' {
		p.quit = true
	}
}

func (p *previewWindows) quitRequested() bool {
	return p.quit
}

func (p *previewWindows) Close() {
	p.maskBGR.Close()
	p.detection.Close()
	p.objects.Close()
	p.mask.Close()
}
