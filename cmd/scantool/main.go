// Command scantool inspects and converts point cloud scans and COLMAP
// workspaces without running the server.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/buildscan-data/buildscan/internal/colmap"
	"github.com/buildscan-data/buildscan/internal/pointcloud"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "scantool",
		Usage: "Inspect building scans and COLMAP reconstructions",
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print metadata for a point cloud file",
				ArgsUsage: "<file>",
				Action:    runInfo,
			},
			{
				Name:      "encode",
				Usage:     "convert a point cloud file to the binary wire format",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "output path",
						Value: "cloud.bin",
					},
				},
				Action: runEncode,
			},
			{
				Name:      "colmap",
				Usage:     "summarize a COLMAP workspace directory",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "points-out",
						Usage: "also convert the sparse points to the binary wire format at this path",
					},
				},
				Action: runColmap,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func requireArg(c *cli.Context, what string) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one argument: %s", what)
	}
	return c.Args().First(), nil
}

func runInfo(c *cli.Context) error {
	path, err := requireArg(c, "point cloud file")
	if err != nil {
		return err
	}

	cloud, err := pointcloud.NewLoader().Load(path)
	if err != nil {
		return err
	}
	info, err := pointcloud.Describe(cloud, path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func runEncode(c *cli.Context) error {
	path, err := requireArg(c, "point cloud file")
	if err != nil {
		return err
	}

	cloud, err := pointcloud.NewLoader().Load(path)
	if err != nil {
		return err
	}
	data := pointcloud.Encode(cloud)

	out := c.String("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d points (%d bytes) to %s\n", cloud.NumPoints(), len(data), out)
	return nil
}

func runColmap(c *cli.Context) error {
	dir, err := requireArg(c, "workspace directory")
	if err != nil {
		return err
	}

	ws, err := colmap.LoadWorkspace(dir)
	if err != nil {
		return err
	}
	fmt.Printf("cameras: %d (file present: %v)\n", len(ws.Cameras), ws.HasCameras)
	fmt.Printf("images:  %d (file present: %v)\n", len(ws.Images), ws.HasImages)
	fmt.Printf("points:  %d (file present: %v)\n", len(ws.Points), ws.HasPoints)

	if out := c.String("points-out"); out != "" {
		cloud := &pointcloud.PointCloud{
			Positions: make([][3]float32, len(ws.Points)),
		}
		if len(ws.Points) > 0 {
			cloud.Colors = make([][3]float32, len(ws.Points))
		}
		for i, p := range ws.Points {
			cloud.Positions[i] = [3]float32{
				float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z),
			}
			cloud.Colors[i] = [3]float32{
				float32(p.Color[0]) / 255, float32(p.Color[1]) / 255, float32(p.Color[2]) / 255,
			}
		}
		data := pointcloud.Encode(cloud)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %d sparse points (%d bytes) to %s\n", len(ws.Points), len(data), out)
	}
	return nil
}
