// xrt-aie is a diagnostic tool for the AIE bindings: it opens a device of
// a registered driver backend, runs a graph, pokes RTP ports and reads
// performance counters. With the default sim driver it needs no hardware.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	cli "github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/unsatcore/xrt/aie"
	"github.com/unsatcore/xrt/sim" // registers the "sim" driver
	"github.com/unsatcore/xrt/xcl"
	"github.com/unsatcore/xrt/xrtcore"
)

func main() {
	app := &cli.App{
		Name:  "xrt-aie",
		Usage: "exercise AIE graph execution and profiling against a driver backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "driver",
				Value: "sim",
				Usage: fmt.Sprintf("driver backend to use (registered: %v)", xrtcore.Drivers()),
			},
			&cli.UintFlag{
				Name:  "device",
				Value: 0,
				Usage: "device index within the driver backend",
			},
			&cli.StringFlag{
				Name:  "xclbin-uuid",
				Value: uuid.Nil.String(),
				Usage: "UUID of the hardware image the graphs belong to",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "open a graph, run it and wait for completion",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "graph", Required: true, Usage: "graph name"},
					&cli.IntFlag{Name: "iterations", Value: 1, Usage: "iterations to run (0 runs until ended)"},
					&cli.IntFlag{Name: "timeout-ms", Value: 0, Usage: "wait timeout in ms (0 waits forever)"},
				},
				Action: runGraph,
			},
			{
				Name:  "rtp",
				Usage: "read or update a run-time-parameter port",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "graph", Required: true, Usage: "graph name"},
					&cli.StringFlag{Name: "port", Required: true, Usage: "RTP port name"},
					&cli.StringFlag{Name: "set", Usage: "hex bytes to write; omit to read instead"},
					&cli.IntFlag{Name: "size", Value: 4, Usage: "bytes to read when --set is omitted"},
				},
				Action: rtp,
			},
			{
				Name:  "profile",
				Usage: "count stream events on a GMIO port while syncing a buffer through it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "gmio", Required: true, Usage: "GMIO port name"},
					&cli.IntFlag{Name: "option", Value: int(aie.IOStreamRunningEventCount), Usage: "profiling option (0-3)"},
					&cli.Uint64Flag{Name: "bytes", Value: 256, Usage: "bytes to sync through the port"},
				},
				Action: profile,
			},
			{
				Name:   "drivers",
				Usage:  "list registered driver backends",
				Action: listDrivers,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		klog.Exitf("xrt-aie: %v (errno %d)", err, xcl.Errno(err))
	}
}

func openDevice(ctx *cli.Context) (xrtcore.Device, error) {
	return xcl.DeviceOpen(ctx.String("driver"), ctx.Uint("device"))
}

func runGraph(ctx *cli.Context) error {
	device, err := openDevice(ctx)
	if err != nil {
		return err
	}
	defer device.Close()

	xclbin := must.M1(uuid.Parse(ctx.String("xclbin-uuid")))
	handle, err := xcl.OpenGraph(device, xclbin, ctx.String("graph"))
	if err != nil {
		return err
	}
	defer xcl.CloseGraph(handle)

	if err := xcl.GraphRun(handle, ctx.Int("iterations")); err != nil {
		return err
	}
	if err := xcl.GraphWaitDone(handle, ctx.Int("timeout-ms")); err != nil {
		return err
	}
	ts := must.M1(xcl.GraphTimestamp(handle))
	fmt.Printf("graph %q done, timestamp %d cycles\n", ctx.String("graph"), ts)
	return nil
}

func rtp(ctx *cli.Context) error {
	device, err := openDevice(ctx)
	if err != nil {
		return err
	}
	defer device.Close()

	xclbin := must.M1(uuid.Parse(ctx.String("xclbin-uuid")))
	handle, err := xcl.OpenGraph(device, xclbin, ctx.String("graph"))
	if err != nil {
		return err
	}
	defer xcl.CloseGraph(handle)

	port := ctx.String("port")
	if value := ctx.String("set"); value != "" {
		data := must.M1(hex.DecodeString(value))
		if err := xcl.GraphUpdateRTP(handle, port, data); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to RTP port %q\n", len(data), port)
		return nil
	}
	data := make([]byte, ctx.Int("size"))
	if err := xcl.GraphReadRTP(handle, port, data); err != nil {
		return err
	}
	fmt.Printf("RTP port %q: %s\n", port, hex.EncodeToString(data))
	return nil
}

func profile(ctx *cli.Context) error {
	device, err := openDevice(ctx)
	if err != nil {
		return err
	}
	defer device.Close()

	gmio := ctx.String("gmio")
	size := ctx.Uint64("bytes")
	handle, err := xcl.StartProfiling(device, ctx.Int("option"), gmio, "", uint32(size))
	if err != nil {
		return err
	}

	// BO allocation is backend-specific; only the sim allocator is wired
	// into this tool.
	bo := sim.NewBO(size)
	if err := xcl.SyncBONB(device, bo, gmio, xrtcore.SyncGMIOToAIE, size, 0); err != nil {
		return err
	}
	if err := xcl.GMIOWait(device, gmio); err != nil {
		return err
	}

	value, err := xcl.ReadProfiling(handle)
	if err != nil {
		return err
	}
	fmt.Printf("profiling option %d on %q: %d\n", ctx.Int("option"), gmio, value)
	return xcl.StopProfiling(handle)
}

func listDrivers(*cli.Context) error {
	for _, name := range xrtcore.Drivers() {
		fmt.Println(name)
	}
	return nil
}
