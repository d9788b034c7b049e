package panel

import (
	"image"
	"os"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

type bitField struct{ Offset, Length, Right uint32 }

type varScreenInfo struct {
	Xres, Yres               uint32
	XresVirtual, YresVirtual uint32
	Xoffset, Yoffset         uint32
	BitsPerPixel, Grayscale  uint32
	Red, Green, Blue, Transp bitField
	Nonstd, Activate         uint32
	Height, Width            uint32
	AccelFlags               uint32
	Pixclock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HsyncLen, VsyncLen       uint32
	Sync, Vmode, Rotate      uint32
	Colorspace               uint32
	Reserved                 [4]uint32
}

type fixScreenInfo struct {
	Id                            [16]byte
	SmemStart                     uintptr
	SmemLen, Type, TypeAux        uint32
	Visual                        uint32
	Xpanstep, Ypanstep, Ywrapstep uint16
	LineLength                    uint32
	MmioStart                     uintptr
	MmioLen, Accel                uint32
	Capabilities                  uint16
	Reserved                      [2]uint16
}

// Fb drives a Linux framebuffer device, as exposed for small SPI
// displays by fbtft. Supports 1bpp mono and 16bpp rgb565 modes.
type Fb struct {
	dev   string
	f     *os.File
	finfo fixScreenInfo
	vinfo varScreenInfo
	buf   []byte
}

var _ Panel = new(Fb) // compile-time interface test

func NewFb(dev string) *Fb { return &Fb{dev: dev} }

func (fb *Fb) Init() error {
	f, err := os.OpenFile(fb.dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return errors.Annotatef(err, "fb open device=%s", fb.dev)
	}
	fb.f = f
	fd := f.Fd()
	if err = ioctl(fd, fbioGetFScreenInfo, uintptr(unsafe.Pointer(&fb.finfo))); err != nil {
		f.Close()
		return errors.Annotate(err, "fb FSCREENINFO")
	}
	if err = ioctl(fd, fbioGetVScreenInfo, uintptr(unsafe.Pointer(&fb.vinfo))); err != nil {
		f.Close()
		return errors.Annotate(err, "fb VSCREENINFO")
	}
	switch fb.vinfo.BitsPerPixel {
	case 1, 16:
	default:
		f.Close()
		return errors.Errorf("fb device=%s bpp=%d not supported", fb.dev, fb.vinfo.BitsPerPixel)
	}
	fb.buf = make([]byte, int(fb.finfo.LineLength)*int(fb.vinfo.Yres))
	return nil
}

func (fb *Fb) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

func (fb *Fb) Draw(f *Frame) error {
	if fb.f == nil {
		return errors.Errorf("fb Draw before Init")
	}
	size := fb.Size()
	if f.Size() != size {
		return errors.Errorf("fb frame size=%v device=%v", f.Size(), size)
	}
	stride := int(fb.finfo.LineLength)
	switch fb.vinfo.BitsPerPixel {
	case 1:
		packed := f.Packed()
		packedStride := (size.X + 7) / 8
		for y := 0; y < size.Y; y++ {
			copy(fb.buf[y*stride:], packed[y*packedStride:(y+1)*packedStride])
		}
	case 16:
		// black and white are the same both bytes, endian does not matter
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				b := byte(0)
				if f.white(x, y) {
					b = 0xff
				}
				fb.buf[y*stride+x*2] = b
				fb.buf[y*stride+x*2+1] = b
			}
		}
	}
	_, err := fb.f.WriteAt(fb.buf, 0)
	return errors.Annotate(err, "fb write")
}

func (fb *Fb) Clear() error {
	f := NewFrame(fb.Size())
	return fb.Draw(f)
}

func (fb *Fb) Sleep() error {
	if fb.f == nil {
		return nil
	}
	err := fb.f.Close()
	fb.f = nil
	return errors.Annotate(err, "fb close")
}

func ioctl(fd uintptr, cmd uintptr, data uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, data); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
